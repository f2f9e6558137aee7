package domain

import (
	"time"

	"github.com/google/uuid"
)

// Code is a single-use authorization code. Only the unsalted lookup hash of
// the plaintext code is persisted; the plaintext lives in the redirect query
// string and nowhere else.
//
// A code is redeemable exactly once: the exchange step claims the row with an
// atomic delete before issuing a token, and expired codes are deleted on the
// failed exchange attempt.
type Code struct {
	ID        uuid.UUID
	CodeHash  string // Unsalted lookup hash of the plaintext code
	ClientID  uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
	Scopes    []Scope // Requested scopes, carried forward to the access token
	CreatedAt time.Time
}

// Expired reports whether the code's expiry has passed at the given instant.
func (c *Code) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}

// IssueCodeInput contains the parameters for issuing an authorization code.
// The redirect URI must be verified against the client before issuing.
type IssueCodeInput struct {
	ClientID uuid.UUID
	UserID   uuid.UUID
	Scopes   []string // Parsed, deduplicated scope names
}

// IssueCodeOutput contains the result of issuing an authorization code. The
// plain code is only returned once, for the redirect query string.
type IssueCodeOutput struct {
	PlainCode string
	ExpiresAt time.Time
}
