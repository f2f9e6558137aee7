// Package service provides identity-related technical services, currently
// password hashing with transparent algorithm migration.
package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
	oauthService "github.com/tyratox/lazuli-auth/internal/oauth/service"
)

// AlgorithmArgon2id identifies Argon2id password hashes. The encoded hash is
// self-describing, so records under this algorithm carry no separate salt.
const AlgorithmArgon2id = "argon2id"

// PasswordService hashes and verifies user passwords. New hashes always use
// Argon2id; passwords hashed under a legacy HMAC algorithm still verify, and
// a successful legacy verification yields an upgraded Argon2id hash for the
// caller to persist (migration-on-verify).
type PasswordService interface {
	// HashPassword hashes a plain text password with the current algorithm.
	HashPassword(plainPassword string) (*oauthService.Hashed, error)

	// VerifyPassword checks plainPassword against the stored hash fields.
	// On a successful verification of a record stored under a non-default
	// algorithm, upgraded holds the re-hashed credential to persist; it is
	// nil when no migration is needed. Verification failures return
	// ok=false and never an error.
	VerifyPassword(plainPassword, storedHash, storedSalt, storedAlgorithm string) (ok bool, upgraded *oauthService.Hashed, err error)
}

// passwordService implements PasswordService on go-pwdhash (Argon2id) with
// the shared HasherService handling legacy HMAC algorithms.
type passwordService struct {
	pwdHasher *pwdhash.PasswordHasher
	hasher    oauthService.HasherService
}

// HashPassword hashes a plain text password using Argon2id.
func (p *passwordService) HashPassword(plainPassword string) (*oauthService.Hashed, error) {
	encoded, err := p.pwdHasher.Hash([]byte(plainPassword))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}
	return &oauthService.Hashed{
		Hash:      encoded,
		Salt:      "",
		Algorithm: AlgorithmArgon2id,
	}, nil
}

// VerifyPassword verifies plainPassword against a stored credential,
// producing an upgraded Argon2id hash when the record predates the current
// algorithm.
func (p *passwordService) VerifyPassword(
	plainPassword, storedHash, storedSalt, storedAlgorithm string,
) (bool, *oauthService.Hashed, error) {
	if storedAlgorithm == AlgorithmArgon2id {
		ok, err := p.pwdHasher.Verify([]byte(plainPassword), storedHash)
		if err != nil || !ok {
			return false, nil, nil
		}
		return true, nil, nil
	}

	// Legacy HMAC algorithm: recompute with the stored salt and algorithm.
	recomputed, err := p.hasher.HashWith(plainPassword, storedSalt, storedAlgorithm)
	if err != nil {
		return false, nil, nil
	}
	if !p.hasher.Compare(recomputed.Hash, storedHash) {
		return false, nil, nil
	}

	upgraded, err := p.HashPassword(plainPassword)
	if err != nil {
		// The password still verified; migration is best-effort.
		return true, nil, nil
	}
	return true, upgraded, nil
}

// NewPasswordService creates a PasswordService using Argon2id for new hashes.
// Uses the Moderate policy for a balance between security and performance.
func NewPasswordService(hasher oauthService.HasherService) PasswordService {
	pwdHasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &passwordService{
		pwdHasher: pwdHasher,
		hasher:    hasher,
	}
}
