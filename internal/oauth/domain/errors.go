package domain

import (
	"github.com/tyratox/lazuli-auth/internal/errors"
)

// OAuth2 protocol errors. All of these are terminal for the current request.
// Lookup failures and credential mismatches deliberately collapse into the
// same errors so callers cannot distinguish "client not found" from "secret
// mismatch" (enumeration side channel).
var (
	// ErrInvalidClient indicates an unknown client id or a failed secret verification.
	ErrInvalidClient = errors.Wrap(errors.ErrUnauthorized, "invalid client")

	// ErrInvalidRedirectURI indicates the presented redirect URI is not registered to the client.
	ErrInvalidRedirectURI = errors.Wrap(errors.ErrInvalidInput, "invalid redirect uri")

	// ErrInvalidGrant indicates the authorization code was not found, already used, or malformed.
	ErrInvalidGrant = errors.Wrap(errors.ErrUnauthorized, "invalid grant")

	// ErrExpiredGrant indicates the authorization code was found but past its
	// expiry. The code row is deleted as a side effect of the failed exchange.
	ErrExpiredGrant = errors.Wrap(errors.ErrUnauthorized, "expired grant")

	// ErrInvalidToken indicates the bearer token was not found or its owning user no longer exists.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrInsufficientPermissions indicates a valid token whose user lacks a required permission.
	ErrInsufficientPermissions = errors.Wrap(errors.ErrForbidden, "insufficient permissions")

	// ErrInvalidTransaction indicates an unknown or expired consent transaction.
	ErrInvalidTransaction = errors.Wrap(errors.ErrInvalidInput, "invalid consent transaction")

	// ErrClientNotFound indicates a client with the specified ID was not found.
	// Surfaced by repositories; use cases map it to ErrInvalidClient before it
	// reaches a caller.
	ErrClientNotFound = errors.Wrap(errors.ErrNotFound, "client not found")

	// ErrCodeNotFound indicates an authorization code row was not found.
	ErrCodeNotFound = errors.Wrap(errors.ErrNotFound, "authorization code not found")

	// ErrTokenNotFound indicates an access token row was not found.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "access token not found")

	// ErrScopeNotFound indicates a scope row was not found.
	ErrScopeNotFound = errors.Wrap(errors.ErrNotFound, "scope not found")
)
