package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/sha3"

	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
)

// Supported hashing algorithm identifiers. The default is configured
// process-wide; the others remain verifiable for migration-on-verify.
const (
	AlgorithmSHA256  = "sha256"
	AlgorithmSHA512  = "sha512"
	AlgorithmSHA3512 = "sha3-512"
)

// hasherService implements HasherService with HMAC hashing keyed by the salt.
type hasherService struct {
	defaultAlgorithm string
	saltLength       int
	generator        GeneratorService
}

// newHash returns the hash constructor for the given algorithm identifier.
func newHash(algorithm string) (func() hash.Hash, error) {
	switch algorithm {
	case AlgorithmSHA256:
		return sha256.New, nil
	case AlgorithmSHA512:
		return sha512.New, nil
	case AlgorithmSHA3512:
		return sha3.New512, nil
	default:
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported hash algorithm "+algorithm)
	}
}

// Hash hashes data with a freshly generated random salt and the default algorithm.
func (h *hasherService) Hash(data string) (*Hashed, error) {
	salt, err := h.generator.RandomString(h.saltLength)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate salt")
	}
	return h.HashWith(data, salt, h.defaultAlgorithm)
}

// HashWith hashes data with the provided salt and algorithm. An empty salt
// produces a plain unsalted digest.
func (h *hasherService) HashWith(data, salt, algorithm string) (*Hashed, error) {
	constructor, err := newHash(algorithm)
	if err != nil {
		return nil, err
	}

	var digest []byte
	if salt == "" {
		hasher := constructor()
		hasher.Write([]byte(data))
		digest = hasher.Sum(nil)
	} else {
		mac := hmac.New(constructor, []byte(salt))
		mac.Write([]byte(data))
		digest = mac.Sum(nil)
	}

	return &Hashed{
		Hash:      hex.EncodeToString(digest),
		Salt:      salt,
		Algorithm: algorithm,
	}, nil
}

// LookupHash computes the unsalted digest of data under the default algorithm.
// The default algorithm is validated at construction, so this cannot fail.
func (h *hasherService) LookupHash(data string) string {
	hashed, err := h.HashWith(data, "", h.defaultAlgorithm)
	if err != nil {
		panic(err)
	}
	return hashed.Hash
}

// DefaultAlgorithm returns the configured process-wide default algorithm.
func (h *hasherService) DefaultAlgorithm() string {
	return h.defaultAlgorithm
}

// Compare performs a constant-time comparison of two hex-encoded digests.
func (h *hasherService) Compare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// NewHasherService creates a HasherService with the given default algorithm
// and salt length. Returns an error if the algorithm is not supported.
func NewHasherService(defaultAlgorithm string, saltLength int, generator GeneratorService) (HasherService, error) {
	if _, err := newHash(defaultAlgorithm); err != nil {
		return nil, err
	}
	if saltLength <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "salt length must be positive")
	}

	return &hasherService{
		defaultAlgorithm: defaultAlgorithm,
		saltLength:       saltLength,
		generator:        generator,
	}, nil
}
