// Package domain defines the OAuth2 authorization-server domain models.
//
// It covers registered clients with hashed secrets, single-use authorization
// codes, bearer access tokens with sliding expiry, and normalized scopes shared
// between codes and tokens.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a registered OAuth2 application.
//
// The secret is stored as an HMAC hash together with its salt and the algorithm
// it was hashed under, so records hashed under an older algorithm can be
// verified and transparently upgraded. Trusted clients skip the interactive
// consent screen entirely.
type Client struct {
	ID              uuid.UUID     // Unique identifier (UUIDv7)
	Name            string        // Human-readable client name
	SecretHash      string        //nolint:gosec // hashed client secret (not plaintext)
	SecretSalt      string        // Salt the secret was hashed with
	SecretAlgorithm string        // Algorithm the stored hash was produced with
	Trusted         bool          // Trusted clients bypass user consent
	UserID          uuid.UUID     // Owning user
	RedirectURIs    []RedirectURI // Registered redirect URIs (nil until loaded)
	CreatedAt       time.Time
}

// RedirectURI is a redirect target registered to exactly one client.
// Matching against presented URIs is byte-exact; "https://a.com" and
// "https://a.com/" are distinct values.
type RedirectURI struct {
	ID       uuid.UUID
	ClientID uuid.UUID
	URI      string
}

// HasRedirectURI reports whether uri exactly matches one of the client's
// registered redirect URIs. Callers must ensure RedirectURIs is loaded;
// an unloaded or empty association never matches.
func (c *Client) HasRedirectURI(uri string) bool {
	if uri == "" {
		return false
	}
	for _, registered := range c.RedirectURIs {
		if registered.URI == uri {
			return true
		}
	}
	return false
}

// CreateClientInput contains the parameters for registering a new OAuth client.
// The client secret is generated server-side and cannot be specified by the caller.
type CreateClientInput struct {
	Name         string    // Human-readable name for identifying the client
	Trusted      bool      // Whether the client skips the consent screen
	UserID       uuid.UUID // Owning user
	RedirectURIs []string  // Redirect URIs to register for the client
}

// UpdateClientInput contains the mutable client fields. The secret, owner,
// and redirect URIs are managed through dedicated operations.
type UpdateClientInput struct {
	Name    string
	Trusted bool
}

// CreateClientOutput contains the result of registering a new client.
// SECURITY: The PlainSecret is only returned once and must be securely
// transmitted to the client. It is never retrievable again.
type CreateClientOutput struct {
	ID          uuid.UUID
	PlainSecret string // Plain text secret (transmit securely, never log)
}
