// Package strategy provides pluggable authentication backends behind a
// single polymorphic interface. Each variant verifies one credential shape
// and resolves it to a user; routes pick the variant matching the
// credentials they accept.
package strategy

import (
	"context"

	"github.com/google/uuid"

	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// Credentials carries the raw credential material for every variant. Only
// the fields a given strategy reads need to be set.
type Credentials struct {
	Email        string
	Password     string
	Token        string
	ClientID     string
	ClientSecret string
}

// Strategy authenticates a set of credentials and resolves the acting user.
type Strategy interface {
	Authenticate(ctx context.Context, creds Credentials) (*identityDomain.User, error)
}

// PasswordVerifier verifies an email and password pair.
type PasswordVerifier interface {
	Authenticate(ctx context.Context, email, password string) (*identityDomain.User, error)
}

// TokenValidator validates a plain bearer token.
type TokenValidator interface {
	Validate(ctx context.Context, plainToken string, requiredPermissions []string) (*identityDomain.User, *oauthDomain.AccessToken, error)
}

// ClientVerifier verifies a client id and secret pair.
type ClientVerifier interface {
	Authenticate(ctx context.Context, clientID uuid.UUID, plainSecret string) (*oauthDomain.Client, error)
}

// UserResolver looks up a user by id.
type UserResolver interface {
	Get(ctx context.Context, userID uuid.UUID) (*identityDomain.User, error)
}

type localPassword struct {
	users PasswordVerifier
}

// NewLocalPassword returns the email/password strategy.
func NewLocalPassword(users PasswordVerifier) Strategy {
	return &localPassword{users: users}
}

func (s *localPassword) Authenticate(ctx context.Context, creds Credentials) (*identityDomain.User, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, identityDomain.ErrInvalidCredentials
	}
	return s.users.Authenticate(ctx, creds.Email, creds.Password)
}

type bearerToken struct {
	tokens TokenValidator
}

// NewBearerToken returns the bearer access token strategy. Validation slides
// the token's expiry window forward like the bearer middleware does.
func NewBearerToken(tokens TokenValidator) Strategy {
	return &bearerToken{tokens: tokens}
}

func (s *bearerToken) Authenticate(ctx context.Context, creds Credentials) (*identityDomain.User, error) {
	if creds.Token == "" {
		return nil, identityDomain.ErrInvalidCredentials
	}
	user, _, err := s.tokens.Validate(ctx, creds.Token, nil)
	if err != nil {
		return nil, err
	}
	return user, nil
}

type clientCredential struct {
	clients ClientVerifier
	users   UserResolver
}

// NewClientCredential returns the client id/secret strategy. The resolved
// user is the client's registered owner.
func NewClientCredential(clients ClientVerifier, users UserResolver) Strategy {
	return &clientCredential{clients: clients, users: users}
}

func (s *clientCredential) Authenticate(ctx context.Context, creds Credentials) (*identityDomain.User, error) {
	// A malformed client id is indistinguishable from an unknown one.
	clientID, err := uuid.Parse(creds.ClientID)
	if err != nil {
		return nil, oauthDomain.ErrInvalidClient
	}

	client, err := s.clients.Authenticate(ctx, clientID, creds.ClientSecret)
	if err != nil {
		return nil, err
	}

	return s.users.Get(ctx, client.UserID)
}
