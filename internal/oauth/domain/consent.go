package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConsentTransaction binds the authorize step to the decision step. It is
// created when a user must be shown the consent screen and redeemed exactly
// once when the decision comes back; expired transactions are rejected.
type ConsentTransaction struct {
	ID          string // Opaque transaction identifier handed to the consent screen
	ClientID    uuid.UUID
	UserID      uuid.UUID
	RedirectURI string
	Scopes      []string
	ExpiresAt   time.Time
}

// Expired reports whether the transaction's expiry has passed at the given instant.
func (c *ConsentTransaction) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}
