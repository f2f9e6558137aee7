package http

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	"github.com/tyratox/lazuli-auth/internal/identity/strategy"
	identityUseCase "github.com/tyratox/lazuli-auth/internal/identity/usecase"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// mockStrategy is a mock implementation of strategy.Strategy for testing.
type mockStrategy struct {
	mock.Mock
}

func (m *mockStrategy) Authenticate(
	ctx context.Context,
	creds strategy.Credentials,
) (*identityDomain.User, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

// mockUserUseCase is a mock implementation of usecase.UserUseCase for testing.
type mockUserUseCase struct {
	mock.Mock
}

func (m *mockUserUseCase) Register(
	ctx context.Context,
	input identityUseCase.RegisterUserInput,
) (*identityDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

func (m *mockUserUseCase) Authenticate(
	ctx context.Context,
	email, password string,
) (*identityDomain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

func (m *mockUserUseCase) Get(ctx context.Context, userID uuid.UUID) (*identityDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

func (m *mockUserUseCase) Delete(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// mockExchangeUseCase is a mock implementation of the oauth exchange use case
// for testing; only IssueUserToken matters to the login handler.
type mockExchangeUseCase struct {
	mock.Mock
}

func (m *mockExchangeUseCase) Exchange(
	ctx context.Context,
	client *oauthDomain.Client,
	plainCode string,
	redirectURI string,
) (*oauthDomain.TokenGrant, error) {
	args := m.Called(ctx, client, plainCode, redirectURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.TokenGrant), args.Error(1)
}

func (m *mockExchangeUseCase) IssueUserToken(
	ctx context.Context,
	userID uuid.UUID,
	scopes []string,
) (*oauthDomain.TokenGrant, error) {
	args := m.Called(ctx, userID, scopes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.TokenGrant), args.Error(1)
}

func (m *mockExchangeUseCase) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
