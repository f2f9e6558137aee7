package service

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
)

// headerSafeChars are the characters legal in HTTP header values, beyond
// letters and digits, per RFC 7230 token/quoted rules the callers rely on.
const headerSafeChars = `()<>@,;:\/"[]?={}`

// generatorService implements GeneratorService on crypto/rand.
type generatorService struct{}

// RandomString returns a cryptographically secure random string of exactly
// length characters. The string is the base64 encoding of random bytes,
// truncated to length.
func (g *generatorService) RandomString(length int) (string, error) {
	if length <= 0 {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "length must be positive")
	}

	// base64 expands 3 bytes to 4 characters; read enough to cover length.
	randomBytes := make([]byte, (length*3+3)/4+3)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", apperrors.Wrap(err, "failed to read random bytes")
	}

	encoded := base64.StdEncoding.EncodeToString(randomBytes)
	return encoded[:length], nil
}

// HeaderSafeString is RandomString with every character illegal in an HTTP
// header value replaced by a digit derived from the original random character,
// so the result stays uniformly random over the shrunken alphabet.
func (g *generatorService) HeaderSafeString(length int) (string, error) {
	s, err := g.RandomString(length)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isHeaderSafe(c) {
			builder.WriteByte(c)
			continue
		}
		builder.WriteByte('0' + c%10)
	}
	return builder.String(), nil
}

// isHeaderSafe reports whether c may appear in an HTTP header value.
func isHeaderSafe(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	default:
		return strings.IndexByte(headerSafeChars, c) >= 0
	}
}

// NewGeneratorService creates a GeneratorService backed by crypto/rand.
func NewGeneratorService() GeneratorService {
	return &generatorService{}
}
