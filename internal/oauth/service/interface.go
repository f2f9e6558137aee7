// Package service provides technical services for the OAuth2 core: credential
// hashing with algorithm migration, secure random token generation, and the
// in-memory consent transaction store.
package service

import (
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// Hashed is the result of hashing a credential. Callers persist all three
// fields so the hash can be verified (and migrated) later.
type Hashed struct {
	Hash      string // Hex-encoded digest
	Salt      string // Salt used as the HMAC key, empty for lookup hashes
	Algorithm string // Algorithm identifier the digest was produced with
}

// HasherService hashes client secrets, user passwords, and token lookup
// values. Salted hashes are HMACs keyed by the salt; lookup hashes are plain
// unsalted digests so rows can be found by hash before the salt is known.
//
// The default algorithm is process-wide configuration. Verifying against a
// stored record uses the record's own algorithm; on success callers re-hash
// with the current default when the two differ (migration-on-verify).
type HasherService interface {
	// Hash hashes data with a freshly generated random salt and the default algorithm.
	Hash(data string) (*Hashed, error)

	// HashWith hashes data with the provided salt and algorithm. Used to
	// recompute a hash for verification against a stored record.
	HashWith(data, salt, algorithm string) (*Hashed, error)

	// LookupHash computes the unsalted digest of data under the default
	// algorithm. Used for token and code lookup-by-hash indices.
	LookupHash(data string) string

	// DefaultAlgorithm returns the configured process-wide default algorithm.
	DefaultAlgorithm() string

	// Compare performs a constant-time comparison of two hex-encoded digests.
	Compare(a, b string) bool
}

// GeneratorService produces collision-free random identifiers for secrets,
// access tokens, and authorization codes.
type GeneratorService interface {
	// RandomString returns a cryptographically secure random string of exactly
	// length characters, drawn from a base64-derived alphabet.
	RandomString(length int) (string, error)

	// HeaderSafeString is RandomString with every character illegal in HTTP
	// header values replaced by a digit. The replacement shrinks effective
	// entropy, so callers should size length generously (tokens use twice the
	// configured base length).
	HeaderSafeString(length int) (string, error)
}

// ConsentTransactionStore holds pending consent transactions between the
// authorize and decision steps. Transactions are single-use and expire after
// the configured lifetime.
type ConsentTransactionStore interface {
	// Create stores the transaction and returns its generated ID.
	Create(tx *oauthDomain.ConsentTransaction) (string, error)

	// Consume removes and returns the transaction with the given ID.
	// Returns ErrInvalidTransaction for unknown or expired IDs.
	Consume(id string) (*oauthDomain.ConsentTransaction, error)
}
