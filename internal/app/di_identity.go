package app

import (
	"fmt"

	identityHTTP "github.com/tyratox/lazuli-auth/internal/identity/http"
	identityRepository "github.com/tyratox/lazuli-auth/internal/identity/repository"
	identityService "github.com/tyratox/lazuli-auth/internal/identity/service"
	identityStrategy "github.com/tyratox/lazuli-auth/internal/identity/strategy"
	identityUseCase "github.com/tyratox/lazuli-auth/internal/identity/usecase"
	oauthUseCase "github.com/tyratox/lazuli-auth/internal/oauth/usecase"
)

// userRepository combines the identity and oauth views of user persistence.
// The concrete SQL repositories satisfy both.
type userRepository interface {
	identityUseCase.UserRepository
	oauthUseCase.UserRepository
}

// UserRepository returns the user repository instance.
func (c *Container) UserRepository() (userRepository, error) {
	var err error
	c.userRepoInit.Do(func() {
		c.userRepo, err = c.initUserRepository()
		if err != nil {
			c.initErrors["userRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// PasswordService returns the password hashing service.
func (c *Container) PasswordService() (identityService.PasswordService, error) {
	var err error
	c.passwordSvcInit.Do(func() {
		hasher, hasherErr := c.HasherService()
		if hasherErr != nil {
			err = fmt.Errorf("failed to get hasher for password service: %w", hasherErr)
			c.initErrors["passwordService"] = err
			return
		}
		c.passwordSvc = identityService.NewPasswordService(hasher)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["passwordService"]; exists {
		return nil, storedErr
	}
	return c.passwordSvc, nil
}

// UserUseCase returns the user use case instance.
func (c *Container) UserUseCase() (identityUseCase.UserUseCase, error) {
	var err error
	c.userUseCaseInit.Do(func() {
		c.userUseCase, err = c.initUserUseCase()
		if err != nil {
			c.initErrors["userUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUseCase, nil
}

// LocalPasswordStrategy returns the email/password authentication strategy.
func (c *Container) LocalPasswordStrategy() (identityStrategy.Strategy, error) {
	var err error
	c.localPasswordStrategyInit.Do(func() {
		userUseCase, ucErr := c.UserUseCase()
		if ucErr != nil {
			err = fmt.Errorf("failed to get user use case for password strategy: %w", ucErr)
			c.initErrors["localPasswordStrategy"] = err
			return
		}
		c.localPasswordStrategy = identityStrategy.NewLocalPassword(userUseCase)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["localPasswordStrategy"]; exists {
		return nil, storedErr
	}
	return c.localPasswordStrategy, nil
}

// BearerTokenStrategy returns the bearer access token authentication strategy.
func (c *Container) BearerTokenStrategy() (identityStrategy.Strategy, error) {
	var err error
	c.bearerTokenStrategyInit.Do(func() {
		bearerUseCase, ucErr := c.BearerUseCase()
		if ucErr != nil {
			err = fmt.Errorf("failed to get bearer use case for token strategy: %w", ucErr)
			c.initErrors["bearerTokenStrategy"] = err
			return
		}
		c.bearerTokenStrategy = identityStrategy.NewBearerToken(bearerUseCase)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["bearerTokenStrategy"]; exists {
		return nil, storedErr
	}
	return c.bearerTokenStrategy, nil
}

// ClientCredentialStrategy returns the client id/secret authentication
// strategy, resolving to the client's owner.
func (c *Container) ClientCredentialStrategy() (identityStrategy.Strategy, error) {
	var err error
	c.clientCredentialStrategyInit.Do(func() {
		clientUseCase, ucErr := c.ClientUseCase()
		if ucErr != nil {
			err = fmt.Errorf("failed to get client use case for client credential strategy: %w", ucErr)
			c.initErrors["clientCredentialStrategy"] = err
			return
		}
		userUseCase, ucErr := c.UserUseCase()
		if ucErr != nil {
			err = fmt.Errorf("failed to get user use case for client credential strategy: %w", ucErr)
			c.initErrors["clientCredentialStrategy"] = err
			return
		}
		c.clientCredentialStrategy = identityStrategy.NewClientCredential(clientUseCase, userUseCase)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientCredentialStrategy"]; exists {
		return nil, storedErr
	}
	return c.clientCredentialStrategy, nil
}

// UserHandler returns the HTTP handler for the user endpoints.
func (c *Container) UserHandler() (*identityHTTP.UserHandler, error) {
	var err error
	c.userHandlerInit.Do(func() {
		c.userHandler, err = c.initUserHandler()
		if err != nil {
			c.initErrors["userHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userHandler"]; exists {
		return nil, storedErr
	}
	return c.userHandler, nil
}

// initUserRepository creates the user repository instance.
func (c *Container) initUserRepository() (userRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return identityRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return identityRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initUserUseCase creates the user use case instance.
func (c *Container) initUserUseCase() (identityUseCase.UserUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for user use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}

	passwordService, err := c.PasswordService()
	if err != nil {
		return nil, fmt.Errorf("failed to get password service for user use case: %w", err)
	}

	return identityUseCase.NewUserUseCase(
		c.Logger(),
		txManager,
		userRepo,
		passwordService,
	), nil
}

// initUserHandler creates the user endpoint handler.
func (c *Container) initUserHandler() (*identityHTTP.UserHandler, error) {
	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for user handler: %w", err)
	}

	passwordStrategy, err := c.LocalPasswordStrategy()
	if err != nil {
		return nil, fmt.Errorf("failed to get password strategy for user handler: %w", err)
	}

	exchangeUseCase, err := c.ExchangeUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange use case for user handler: %w", err)
	}

	return identityHTTP.NewUserHandler(userUseCase, passwordStrategy, exchangeUseCase, c.Logger()), nil
}
