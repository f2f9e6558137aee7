package app

import (
	"fmt"

	oauthHTTP "github.com/tyratox/lazuli-auth/internal/oauth/http"
	oauthRepository "github.com/tyratox/lazuli-auth/internal/oauth/repository"
	oauthService "github.com/tyratox/lazuli-auth/internal/oauth/service"
	oauthUseCase "github.com/tyratox/lazuli-auth/internal/oauth/usecase"
)

// GeneratorService returns the random string generator.
func (c *Container) GeneratorService() oauthService.GeneratorService {
	c.generatorInit.Do(func() {
		c.generator = oauthService.NewGeneratorService()
	})
	return c.generator
}

// HasherService returns the credential hasher.
func (c *Container) HasherService() (oauthService.HasherService, error) {
	var err error
	c.hasherInit.Do(func() {
		c.hasher, err = oauthService.NewHasherService(
			c.config.HashAlgorithm,
			c.config.SaltLength,
			c.GeneratorService(),
		)
		if err != nil {
			c.initErrors["hasher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["hasher"]; exists {
		return nil, storedErr
	}
	return c.hasher, nil
}

// ConsentTransactionStore returns the in-memory consent transaction store.
func (c *Container) ConsentTransactionStore() oauthService.ConsentTransactionStore {
	c.consentStoreInit.Do(func() {
		c.consentStore = oauthService.NewConsentTransactionStore(
			c.config.ConsentTransactionLifetime,
			c.GeneratorService(),
		)
	})
	return c.consentStore
}

// ClientRepository returns the client repository instance.
func (c *Container) ClientRepository() (oauthUseCase.ClientRepository, error) {
	var err error
	c.clientRepoInit.Do(func() {
		c.clientRepo, err = c.initClientRepository()
		if err != nil {
			c.initErrors["clientRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientRepo"]; exists {
		return nil, storedErr
	}
	return c.clientRepo, nil
}

// CodeRepository returns the authorization code repository instance.
func (c *Container) CodeRepository() (oauthUseCase.CodeRepository, error) {
	var err error
	c.codeRepoInit.Do(func() {
		c.codeRepo, err = c.initCodeRepository()
		if err != nil {
			c.initErrors["codeRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["codeRepo"]; exists {
		return nil, storedErr
	}
	return c.codeRepo, nil
}

// TokenRepository returns the access token repository instance.
func (c *Container) TokenRepository() (oauthUseCase.TokenRepository, error) {
	var err error
	c.tokenRepoInit.Do(func() {
		c.tokenRepo, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepo"]; exists {
		return nil, storedErr
	}
	return c.tokenRepo, nil
}

// ScopeRepository returns the scope repository instance.
func (c *Container) ScopeRepository() (oauthUseCase.ScopeRepository, error) {
	var err error
	c.scopeRepoInit.Do(func() {
		c.scopeRepo, err = c.initScopeRepository()
		if err != nil {
			c.initErrors["scopeRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["scopeRepo"]; exists {
		return nil, storedErr
	}
	return c.scopeRepo, nil
}

// ClientUseCase returns the client use case instance.
func (c *Container) ClientUseCase() (oauthUseCase.ClientUseCase, error) {
	var err error
	c.clientUseCaseInit.Do(func() {
		c.clientUseCase, err = c.initClientUseCase()
		if err != nil {
			c.initErrors["clientUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientUseCase"]; exists {
		return nil, storedErr
	}
	return c.clientUseCase, nil
}

// AuthorizeUseCase returns the authorization use case instance.
func (c *Container) AuthorizeUseCase() (oauthUseCase.AuthorizeUseCase, error) {
	var err error
	c.authorizeUseCaseInit.Do(func() {
		c.authorizeUseCase, err = c.initAuthorizeUseCase()
		if err != nil {
			c.initErrors["authorizeUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authorizeUseCase"]; exists {
		return nil, storedErr
	}
	return c.authorizeUseCase, nil
}

// ExchangeUseCase returns the token exchange use case instance.
func (c *Container) ExchangeUseCase() (oauthUseCase.ExchangeUseCase, error) {
	var err error
	c.exchangeUseCaseInit.Do(func() {
		c.exchangeUseCase, err = c.initExchangeUseCase()
		if err != nil {
			c.initErrors["exchangeUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["exchangeUseCase"]; exists {
		return nil, storedErr
	}
	return c.exchangeUseCase, nil
}

// BearerUseCase returns the bearer token validation use case instance.
func (c *Container) BearerUseCase() (oauthUseCase.BearerUseCase, error) {
	var err error
	c.bearerUseCaseInit.Do(func() {
		c.bearerUseCase, err = c.initBearerUseCase()
		if err != nil {
			c.initErrors["bearerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["bearerUseCase"]; exists {
		return nil, storedErr
	}
	return c.bearerUseCase, nil
}

// AuthorizeHandler returns the HTTP handler for the authorization endpoints.
func (c *Container) AuthorizeHandler() (*oauthHTTP.AuthorizeHandler, error) {
	var err error
	c.authorizeHandlerInit.Do(func() {
		c.authorizeHandler, err = c.initAuthorizeHandler()
		if err != nil {
			c.initErrors["authorizeHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authorizeHandler"]; exists {
		return nil, storedErr
	}
	return c.authorizeHandler, nil
}

// TokenHandler returns the HTTP handler for the token endpoint.
func (c *Container) TokenHandler() (*oauthHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		c.tokenHandler, err = c.initTokenHandler()
		if err != nil {
			c.initErrors["tokenHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// UserinfoHandler returns the HTTP handler for the userinfo endpoint.
func (c *Container) UserinfoHandler() (*oauthHTTP.UserinfoHandler, error) {
	c.userinfoHandlerInit.Do(func() {
		c.userinfoHandler = oauthHTTP.NewUserinfoHandler(c.Logger())
	})
	return c.userinfoHandler, nil
}

// initClientRepository creates the client repository instance.
func (c *Container) initClientRepository() (oauthUseCase.ClientRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for client repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return oauthRepository.NewMySQLClientRepository(db), nil
	case "postgres":
		return oauthRepository.NewPostgreSQLClientRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initCodeRepository creates the authorization code repository instance.
func (c *Container) initCodeRepository() (oauthUseCase.CodeRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for code repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return oauthRepository.NewMySQLCodeRepository(db), nil
	case "postgres":
		return oauthRepository.NewPostgreSQLCodeRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenRepository creates the access token repository instance.
func (c *Container) initTokenRepository() (oauthUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return oauthRepository.NewMySQLTokenRepository(db), nil
	case "postgres":
		return oauthRepository.NewPostgreSQLTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initScopeRepository creates the scope repository instance.
func (c *Container) initScopeRepository() (oauthUseCase.ScopeRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for scope repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return oauthRepository.NewMySQLScopeRepository(db), nil
	case "postgres":
		return oauthRepository.NewPostgreSQLScopeRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initClientUseCase creates the client use case instance.
func (c *Container) initClientUseCase() (oauthUseCase.ClientUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for client use case: %w", err)
	}

	clientRepo, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for client use case: %w", err)
	}

	hasher, err := c.HasherService()
	if err != nil {
		return nil, fmt.Errorf("failed to get hasher for client use case: %w", err)
	}

	baseUseCase := oauthUseCase.NewClientUseCase(
		c.config,
		c.Logger(),
		txManager,
		clientRepo,
		hasher,
		c.GeneratorService(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for client use case: %w", err)
		}
		return oauthUseCase.NewClientUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuthorizeUseCase creates the authorization use case instance.
func (c *Container) initAuthorizeUseCase() (oauthUseCase.AuthorizeUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for authorize use case: %w", err)
	}

	codeRepo, err := c.CodeRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get code repository for authorize use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for authorize use case: %w", err)
	}

	scopeRepo, err := c.ScopeRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get scope repository for authorize use case: %w", err)
	}

	hasher, err := c.HasherService()
	if err != nil {
		return nil, fmt.Errorf("failed to get hasher for authorize use case: %w", err)
	}

	baseUseCase := oauthUseCase.NewAuthorizeUseCase(
		c.config,
		txManager,
		codeRepo,
		tokenRepo,
		scopeRepo,
		hasher,
		c.GeneratorService(),
		c.ConsentTransactionStore(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for authorize use case: %w", err)
		}
		return oauthUseCase.NewAuthorizeUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initExchangeUseCase creates the token exchange use case instance.
func (c *Container) initExchangeUseCase() (oauthUseCase.ExchangeUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for exchange use case: %w", err)
	}

	clientRepo, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for exchange use case: %w", err)
	}

	codeRepo, err := c.CodeRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get code repository for exchange use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for exchange use case: %w", err)
	}

	scopeRepo, err := c.ScopeRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get scope repository for exchange use case: %w", err)
	}

	hasher, err := c.HasherService()
	if err != nil {
		return nil, fmt.Errorf("failed to get hasher for exchange use case: %w", err)
	}

	baseUseCase := oauthUseCase.NewExchangeUseCase(
		c.config,
		c.Logger(),
		txManager,
		clientRepo,
		codeRepo,
		tokenRepo,
		scopeRepo,
		hasher,
		c.GeneratorService(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for exchange use case: %w", err)
		}
		return oauthUseCase.NewExchangeUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initBearerUseCase creates the bearer token validation use case instance.
func (c *Container) initBearerUseCase() (oauthUseCase.BearerUseCase, error) {
	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for bearer use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for bearer use case: %w", err)
	}

	hasher, err := c.HasherService()
	if err != nil {
		return nil, fmt.Errorf("failed to get hasher for bearer use case: %w", err)
	}

	baseUseCase := oauthUseCase.NewBearerUseCase(
		c.config,
		c.Logger(),
		tokenRepo,
		userRepo,
		hasher,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for bearer use case: %w", err)
		}
		return oauthUseCase.NewBearerUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuthorizeHandler creates the authorization endpoint handler.
func (c *Container) initAuthorizeHandler() (*oauthHTTP.AuthorizeHandler, error) {
	clientUseCase, err := c.ClientUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get client use case for authorize handler: %w", err)
	}

	authorizeUseCase, err := c.AuthorizeUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorize use case for authorize handler: %w", err)
	}

	return oauthHTTP.NewAuthorizeHandler(clientUseCase, authorizeUseCase, c.Logger()), nil
}

// initTokenHandler creates the token endpoint handler.
func (c *Container) initTokenHandler() (*oauthHTTP.TokenHandler, error) {
	clientUseCase, err := c.ClientUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get client use case for token handler: %w", err)
	}

	exchangeUseCase, err := c.ExchangeUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange use case for token handler: %w", err)
	}

	return oauthHTTP.NewTokenHandler(clientUseCase, exchangeUseCase, c.Logger()), nil
}
