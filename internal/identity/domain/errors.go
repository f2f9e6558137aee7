package domain

import (
	"github.com/tyratox/lazuli-auth/internal/errors"
)

// Identity errors.
var (
	// ErrUserNotFound indicates a user with the specified ID or email was not found.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrInvalidCredentials indicates a failed login. Unknown emails and wrong
	// passwords surface identically to prevent account enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.Wrap(errors.ErrConflict, "email already registered")
)
