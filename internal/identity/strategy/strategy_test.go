package strategy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

type mockPasswordVerifier struct {
	mock.Mock
}

func (m *mockPasswordVerifier) Authenticate(ctx context.Context, email, password string) (*identityDomain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

type mockTokenValidator struct {
	mock.Mock
}

func (m *mockTokenValidator) Validate(ctx context.Context, plainToken string, requiredPermissions []string) (*identityDomain.User, *oauthDomain.AccessToken, error) {
	args := m.Called(ctx, plainToken, requiredPermissions)
	var user *identityDomain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*identityDomain.User)
	}
	var token *oauthDomain.AccessToken
	if args.Get(1) != nil {
		token = args.Get(1).(*oauthDomain.AccessToken)
	}
	return user, token, args.Error(2)
}

type mockClientVerifier struct {
	mock.Mock
}

func (m *mockClientVerifier) Authenticate(ctx context.Context, clientID uuid.UUID, plainSecret string) (*oauthDomain.Client, error) {
	args := m.Called(ctx, clientID, plainSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.Client), args.Error(1)
}

type mockUserResolver struct {
	mock.Mock
}

func (m *mockUserResolver) Get(ctx context.Context, userID uuid.UUID) (*identityDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

func TestLocalPasswordAuthenticate(t *testing.T) {
	ctx := context.Background()
	user := &identityDomain.User{ID: uuid.Must(uuid.NewV7()), Email: "user@example.com"}

	t.Run("valid credentials", func(t *testing.T) {
		verifier := &mockPasswordVerifier{}
		verifier.On("Authenticate", ctx, "user@example.com", "Correct-horse1!").Return(user, nil)

		got, err := NewLocalPassword(verifier).Authenticate(ctx, Credentials{
			Email:    "user@example.com",
			Password: "Correct-horse1!",
		})
		assert.NoError(t, err)
		assert.Equal(t, user, got)
		verifier.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		verifier := &mockPasswordVerifier{}
		verifier.On("Authenticate", ctx, "user@example.com", "wrong").
			Return(nil, identityDomain.ErrInvalidCredentials)

		got, err := NewLocalPassword(verifier).Authenticate(ctx, Credentials{
			Email:    "user@example.com",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, identityDomain.ErrInvalidCredentials)
		assert.Nil(t, got)
	})

	t.Run("missing fields never reach the verifier", func(t *testing.T) {
		verifier := &mockPasswordVerifier{}

		_, err := NewLocalPassword(verifier).Authenticate(ctx, Credentials{Email: "user@example.com"})
		assert.ErrorIs(t, err, identityDomain.ErrInvalidCredentials)
		verifier.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBearerTokenAuthenticate(t *testing.T) {
	ctx := context.Background()
	user := &identityDomain.User{ID: uuid.Must(uuid.NewV7()), Email: "user@example.com"}

	t.Run("valid token", func(t *testing.T) {
		validator := &mockTokenValidator{}
		validator.On("Validate", ctx, "plain-token", []string(nil)).
			Return(user, &oauthDomain.AccessToken{ID: uuid.Must(uuid.NewV7())}, nil)

		got, err := NewBearerToken(validator).Authenticate(ctx, Credentials{Token: "plain-token"})
		assert.NoError(t, err)
		assert.Equal(t, user, got)
		validator.AssertExpectations(t)
	})

	t.Run("invalid token", func(t *testing.T) {
		validator := &mockTokenValidator{}
		validator.On("Validate", ctx, "bad-token", []string(nil)).
			Return(nil, nil, oauthDomain.ErrInvalidToken)

		got, err := NewBearerToken(validator).Authenticate(ctx, Credentials{Token: "bad-token"})
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
		assert.Nil(t, got)
	})

	t.Run("empty token never reaches the validator", func(t *testing.T) {
		validator := &mockTokenValidator{}

		_, err := NewBearerToken(validator).Authenticate(ctx, Credentials{})
		assert.ErrorIs(t, err, identityDomain.ErrInvalidCredentials)
		validator.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestClientCredentialAuthenticate(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	clientID := uuid.Must(uuid.NewV7())
	owner := &identityDomain.User{ID: ownerID, Email: "owner@example.com"}
	client := &oauthDomain.Client{ID: clientID, UserID: ownerID}

	t.Run("valid secret resolves the owner", func(t *testing.T) {
		clients := &mockClientVerifier{}
		users := &mockUserResolver{}
		clients.On("Authenticate", ctx, clientID, "client-secret").Return(client, nil)
		users.On("Get", ctx, ownerID).Return(owner, nil)

		got, err := NewClientCredential(clients, users).Authenticate(ctx, Credentials{
			ClientID:     clientID.String(),
			ClientSecret: "client-secret",
		})
		assert.NoError(t, err)
		assert.Equal(t, owner, got)
		clients.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("wrong secret", func(t *testing.T) {
		clients := &mockClientVerifier{}
		users := &mockUserResolver{}
		clients.On("Authenticate", ctx, clientID, "wrong").
			Return(nil, oauthDomain.ErrInvalidClient)

		got, err := NewClientCredential(clients, users).Authenticate(ctx, Credentials{
			ClientID:     clientID.String(),
			ClientSecret: "wrong",
		})
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidClient)
		assert.Nil(t, got)
		users.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("malformed client id folds to invalid client", func(t *testing.T) {
		clients := &mockClientVerifier{}
		users := &mockUserResolver{}

		_, err := NewClientCredential(clients, users).Authenticate(ctx, Credentials{
			ClientID:     "not-a-uuid",
			ClientSecret: "client-secret",
		})
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidClient)
		clients.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
	})
}
