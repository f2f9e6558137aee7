// Package usecase defines business logic interfaces for the OAuth2
// authorization flow: client management, code issuance, token exchange, and
// bearer validation.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// ClientRepository defines persistence operations for OAuth clients.
// Implementations must support transaction-aware operations via context propagation.
type ClientRepository interface {
	// Create stores a new client together with its redirect URIs.
	Create(ctx context.Context, client *oauthDomain.Client) error

	// Update modifies a client's mutable fields (name, trusted).
	Update(ctx context.Context, client *oauthDomain.Client) error

	// UpdateSecret replaces the stored secret hash, salt, and algorithm.
	UpdateSecret(ctx context.Context, clientID uuid.UUID, secretHash, secretSalt, secretAlgorithm string) error

	// Get retrieves a client by ID without its redirect URI association.
	// Returns ErrClientNotFound if not found.
	Get(ctx context.Context, clientID uuid.UUID) (*oauthDomain.Client, error)

	// ListRedirectURIs retrieves the redirect URIs registered to a client.
	ListRedirectURIs(ctx context.Context, clientID uuid.UUID) ([]oauthDomain.RedirectURI, error)

	// Delete removes a client; codes, tokens, and redirect URIs cascade.
	Delete(ctx context.Context, clientID uuid.UUID) error
}

// CodeRepository defines persistence operations for authorization codes.
type CodeRepository interface {
	// Create stores a new authorization code with its scope associations.
	Create(ctx context.Context, code *oauthDomain.Code) error

	// GetByCodeHash retrieves a code by its lookup hash, scopes included.
	// Returns ErrCodeNotFound if not found.
	GetByCodeHash(ctx context.Context, codeHash string) (*oauthDomain.Code, error)

	// Delete removes a code and reports how many rows were deleted. A zero
	// count means another exchange already claimed the code.
	Delete(ctx context.Context, codeID uuid.UUID) (int64, error)

	// DeleteExpired removes every code whose expiry precedes now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// DeleteExpiredByClient removes the client's codes whose expiry precedes now.
	DeleteExpiredByClient(ctx context.Context, clientID uuid.UUID, now time.Time) (int64, error)
}

// TokenRepository defines persistence operations for bearer access tokens.
type TokenRepository interface {
	// Create stores a new access token with its scope associations.
	Create(ctx context.Context, token *oauthDomain.AccessToken) error

	// GetByTokenHash retrieves a token by its lookup hash, scopes included.
	// Returns ErrTokenNotFound if not found.
	GetByTokenHash(ctx context.Context, tokenHash string) (*oauthDomain.AccessToken, error)

	// UpdateExpiry persists a new expiry timestamp (sliding window).
	UpdateExpiry(ctx context.Context, tokenID uuid.UUID, expiresAt time.Time) error

	// Delete removes an access token.
	Delete(ctx context.Context, tokenID uuid.UUID) error

	// DeleteExpired removes every token whose expiry precedes now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// ListScopeNamesForUserClient returns the union of scope names across the
	// user's tokens for the client that are still live at now. Used for
	// silent re-approval.
	ListScopeNamesForUserClient(ctx context.Context, userID, clientID uuid.UUID, now time.Time) ([]string, error)
}

// ScopeRepository defines persistence operations for normalized scopes.
type ScopeRepository interface {
	// Resolve finds or creates a scope row for each name, in input order.
	Resolve(ctx context.Context, names []string) ([]oauthDomain.Scope, error)
}

// UserRepository defines the identity lookups the OAuth flow needs.
type UserRepository interface {
	// Get retrieves a user by ID. Returns ErrUserNotFound if not found.
	Get(ctx context.Context, userID uuid.UUID) (*identityDomain.User, error)

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*identityDomain.User, error)

	// UpdatePassword persists a re-hashed password after a migration-on-verify.
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash, passwordSalt, passwordAlgorithm string) error
}

// ClientUseCase defines business logic for managing OAuth clients and
// authenticating them during the token exchange.
type ClientUseCase interface {
	// Create registers a new client with a generated random secret. The plain
	// secret is only returned once; the stored record carries its hash.
	Create(ctx context.Context, createClientInput *oauthDomain.CreateClientInput) (*oauthDomain.CreateClientOutput, error)

	// Update modifies a client's name and trusted flag.
	// Returns ErrClientNotFound if the client doesn't exist.
	Update(ctx context.Context, clientID uuid.UUID, updateClientInput *oauthDomain.UpdateClientInput) error

	// Get retrieves a client by ID, redirect URIs included.
	// Returns ErrClientNotFound if the client doesn't exist.
	Get(ctx context.Context, clientID uuid.UUID) (*oauthDomain.Client, error)

	// RotateSecret generates and stores a fresh secret for the client,
	// returning the new plain secret exactly once.
	RotateSecret(ctx context.Context, clientID uuid.UUID) (string, error)

	// Authenticate verifies a client id and secret pair. Unknown clients and
	// wrong secrets both surface as ErrInvalidClient. A correct secret stored
	// under an outdated algorithm is transparently re-hashed and persisted.
	Authenticate(ctx context.Context, clientID uuid.UUID, plainSecret string) (*oauthDomain.Client, error)

	// VerifyRedirectURI checks uri byte-exactly against the client's
	// registered redirect URIs, loading them if absent.
	// Returns ErrInvalidRedirectURI on mismatch.
	VerifyRedirectURI(ctx context.Context, client *oauthDomain.Client, uri string) error

	// Delete removes a client and, through cascades, its codes and tokens.
	Delete(ctx context.Context, clientID uuid.UUID) error
}

// AuthorizeUseCase drives the authorization endpoint: consent decisions and
// authorization code issuance.
type AuthorizeUseCase interface {
	// NeedsConsent reports whether the user must be shown the consent screen.
	// Trusted clients never require consent; otherwise consent is skipped only
	// when the user's previous grants for this client cover every requested scope.
	NeedsConsent(ctx context.Context, client *oauthDomain.Client, userID uuid.UUID, requestedScopes []string) (bool, error)

	// BeginConsent stores a pending consent transaction and returns its ID for
	// the consent form round-trip.
	BeginConsent(client *oauthDomain.Client, userID uuid.UUID, redirectURI string, scopes []string) (string, error)

	// FinishConsent redeems a consent transaction by ID. Transactions are
	// single-use; unknown or expired IDs return ErrInvalidTransaction.
	FinishConsent(transactionID string) (*oauthDomain.ConsentTransaction, error)

	// IssueCode creates a short-lived single-use authorization code bound to
	// the client, user, and requested scopes.
	IssueCode(ctx context.Context, issueCodeInput *oauthDomain.IssueCodeInput) (*oauthDomain.IssueCodeOutput, error)

	// DeleteExpiredCodes sweeps expired authorization codes and reports how
	// many were removed.
	DeleteExpiredCodes(ctx context.Context) (int64, error)
}

// ExchangeUseCase redeems authorization codes for access tokens and issues
// client-less tokens at login.
type ExchangeUseCase interface {
	// Exchange redeems an authorization code for a bearer access token. The
	// client must already be authenticated and redirectURI must byte-exactly
	// match one of its registered redirect URIs. The code is claimed
	// atomically, so concurrent exchanges of the same code yield exactly one
	// token; the losers receive ErrInvalidGrant, as do redirect URI
	// mismatches. Expired codes are deleted and return ErrExpiredGrant.
	Exchange(ctx context.Context, client *oauthDomain.Client, plainCode, redirectURI string) (*oauthDomain.TokenGrant, error)

	// IssueUserToken creates an access token bound to a user but no client,
	// carrying the given scopes. Used after a successful local login.
	IssueUserToken(ctx context.Context, userID uuid.UUID, scopes []string) (*oauthDomain.TokenGrant, error)

	// DeleteExpiredTokens sweeps expired access tokens and reports how many
	// were removed.
	DeleteExpiredTokens(ctx context.Context) (int64, error)
}

// BearerUseCase validates bearer access tokens presented to protected
// endpoints.
type BearerUseCase interface {
	// Validate resolves a plain bearer token to its user, enforces the
	// required permissions, and slides the token's expiry window forward.
	// Invalid, expired, and orphaned tokens return ErrInvalidToken; a valid
	// token whose user lacks a permission returns ErrInsufficientPermissions.
	Validate(ctx context.Context, plainToken string, requiredPermissions []string) (*identityDomain.User, *oauthDomain.AccessToken, error)

	// ValidateSoft is Validate without permission checks and without failure:
	// any invalid token simply yields a nil user.
	ValidateSoft(ctx context.Context, plainToken string) (*identityDomain.User, *oauthDomain.AccessToken)
}
