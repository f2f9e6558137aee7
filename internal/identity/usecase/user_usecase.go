// Package usecase implements the identity business logic: user registration,
// local password login with transparent hash migration, and user lookups.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/tyratox/lazuli-auth/internal/database"
	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	identityService "github.com/tyratox/lazuli-auth/internal/identity/service"
	appValidation "github.com/tyratox/lazuli-auth/internal/validation"
)

// RegisterUserInput contains the input data for user registration.
type RegisterUserInput struct {
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Password    string   `json:"password"`
	Permissions []string `json:"permissions"`
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *identityDomain.User) error
	Get(ctx context.Context, userID uuid.UUID) (*identityDomain.User, error)
	GetByEmail(ctx context.Context, email string) (*identityDomain.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash, passwordSalt, passwordAlgorithm string) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// UserUseCase defines business logic operations for users.
type UserUseCase interface {
	// Register creates a new user with an Argon2id password hash.
	// Returns ErrEmailTaken if the email is already registered.
	Register(ctx context.Context, input RegisterUserInput) (*identityDomain.User, error)

	// Authenticate verifies an email and password pair. Unknown emails and
	// wrong passwords both return ErrInvalidCredentials. Passwords stored
	// under a legacy algorithm are upgraded in place on success.
	Authenticate(ctx context.Context, email, password string) (*identityDomain.User, error)

	// Get retrieves a user by ID. Returns ErrUserNotFound if not found.
	Get(ctx context.Context, userID uuid.UUID) (*identityDomain.User, error)

	// Delete removes a user; owned clients, codes, and tokens cascade.
	Delete(ctx context.Context, userID uuid.UUID) error
}

// userUseCase implements UserUseCase.
type userUseCase struct {
	logger          *slog.Logger
	txManager       database.TxManager
	userRepo        UserRepository
	passwordService identityService.PasswordService
}

// validateRegisterUserInput validates registration input: required fields,
// email format, and password strength.
func (u *userUseCase) validateRegisterUserInput(input RegisterUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.DisplayName,
			validation.Required.Error("display name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("display name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		),
	)
	return appValidation.WrapValidationError(err)
}

// Register creates a new user.
func (u *userUseCase) Register(ctx context.Context, input RegisterUserInput) (*identityDomain.User, error) {
	if err := u.validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))

	if _, err := u.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, identityDomain.ErrEmailTaken
	} else if !errors.Is(err, identityDomain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := u.passwordService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &identityDomain.User{
		ID:                uuid.Must(uuid.NewV7()),
		Email:             email,
		DisplayName:       strings.TrimSpace(input.DisplayName),
		PasswordHash:      hashed.Hash,
		PasswordSalt:      hashed.Salt,
		PasswordAlgorithm: hashed.Algorithm,
		Permissions:       input.Permissions,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies an email and password pair.
//
// Lookup failures and wrong passwords collapse into ErrInvalidCredentials so
// login attempts cannot probe for registered emails. A password stored under
// a legacy HMAC algorithm that verifies successfully is re-hashed with
// Argon2id and persisted; the login succeeds even if that persist fails.
func (u *userUseCase) Authenticate(ctx context.Context, email, password string) (*identityDomain.User, error) {
	user, err := u.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, identityDomain.ErrUserNotFound) {
			return nil, identityDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, upgraded, err := u.passwordService.VerifyPassword(
		password,
		user.PasswordHash,
		user.PasswordSalt,
		user.PasswordAlgorithm,
	)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, identityDomain.ErrInvalidCredentials
	}

	if upgraded != nil {
		err := u.userRepo.UpdatePassword(ctx, user.ID, upgraded.Hash, upgraded.Salt, upgraded.Algorithm)
		if err != nil {
			u.logger.Warn("failed to upgrade password hash",
				slog.String("user_id", user.ID.String()),
				slog.Any("error", err),
			)
		} else {
			user.PasswordHash = upgraded.Hash
			user.PasswordSalt = upgraded.Salt
			user.PasswordAlgorithm = upgraded.Algorithm
		}
	}

	return user, nil
}

// Get retrieves a user by ID.
func (u *userUseCase) Get(ctx context.Context, userID uuid.UUID) (*identityDomain.User, error) {
	return u.userRepo.Get(ctx, userID)
}

// Delete removes a user.
func (u *userUseCase) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := u.userRepo.Get(ctx, userID); err != nil {
		return err
	}
	return u.userRepo.Delete(ctx, userID)
}

// NewUserUseCase creates a new UserUseCase with the provided dependencies.
func NewUserUseCase(
	logger *slog.Logger,
	txManager database.TxManager,
	userRepo UserRepository,
	passwordService identityService.PasswordService,
) UserUseCase {
	return &userUseCase{
		logger:          logger,
		txManager:       txManager,
		userRepo:        userRepo,
		passwordService: passwordService,
	}
}
