package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken is a bearer credential. Only the unsalted lookup hash of the
// plaintext token is persisted. Expiry is a sliding window: every successful
// bearer validation extends ExpiresAt by the configured lifetime.
//
// ClientID is nullable: tokens issued directly to a user (e.g. after a local
// password login) are not tied to any client.
type AccessToken struct {
	ID        uuid.UUID
	TokenHash string
	ClientID  *uuid.UUID // nil for user-issued tokens
	UserID    uuid.UUID
	ExpiresAt time.Time
	Scopes    []Scope
	CreatedAt time.Time
}

// Expired reports whether the token's expiry has passed at the given instant.
func (t *AccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// TokenGrant is the result of a successful token issuance. The plain token is
// only returned once, for wire serialization; the stored record carries the
// hash.
type TokenGrant struct {
	PlainToken string
	Token      *AccessToken
}
