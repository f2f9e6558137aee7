package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	identityUseCase "github.com/tyratox/lazuli-auth/internal/identity/usecase"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// mockClientUseCase is a mock implementation of usecase.ClientUseCase for testing.
type mockClientUseCase struct {
	mock.Mock
}

func (m *mockClientUseCase) Create(
	ctx context.Context,
	createClientInput *oauthDomain.CreateClientInput,
) (*oauthDomain.CreateClientOutput, error) {
	args := m.Called(ctx, createClientInput)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.CreateClientOutput), args.Error(1)
}

func (m *mockClientUseCase) Update(
	ctx context.Context,
	clientID uuid.UUID,
	updateClientInput *oauthDomain.UpdateClientInput,
) error {
	args := m.Called(ctx, clientID, updateClientInput)
	return args.Error(0)
}

func (m *mockClientUseCase) Get(ctx context.Context, clientID uuid.UUID) (*oauthDomain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.Client), args.Error(1)
}

func (m *mockClientUseCase) RotateSecret(ctx context.Context, clientID uuid.UUID) (string, error) {
	args := m.Called(ctx, clientID)
	return args.String(0), args.Error(1)
}

func (m *mockClientUseCase) Authenticate(
	ctx context.Context,
	clientID uuid.UUID,
	plainSecret string,
) (*oauthDomain.Client, error) {
	args := m.Called(ctx, clientID, plainSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.Client), args.Error(1)
}

func (m *mockClientUseCase) VerifyRedirectURI(
	ctx context.Context,
	client *oauthDomain.Client,
	uri string,
) error {
	args := m.Called(ctx, client, uri)
	return args.Error(0)
}

func (m *mockClientUseCase) Delete(ctx context.Context, clientID uuid.UUID) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

// mockExchangeUseCase is a mock implementation of usecase.ExchangeUseCase for testing.
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

// mockAuthorizeUseCase is a mock implementation of usecase.AuthorizeUseCase for testing.
type mockAuthorizeUseCase struct {
	mock.Mock
}

func (m *mockAuthorizeUseCase) NeedsConsent(
	ctx context.Context,
	client *oauthDomain.Client,
	userID uuid.UUID,
	requestedScopes []string,
) (bool, error) {
	args := m.Called(ctx, client, userID, requestedScopes)
	return args.Bool(0), args.Error(1)
}

func (m *mockAuthorizeUseCase) BeginConsent(
	client *oauthDomain.Client,
	userID uuid.UUID,
	redirectURI string,
	scopes []string,
) (string, error) {
	args := m.Called(client, userID, redirectURI, scopes)
	return args.String(0), args.Error(1)
}

func (m *mockAuthorizeUseCase) FinishConsent(transactionID string) (*oauthDomain.ConsentTransaction, error) {
	args := m.Called(transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.ConsentTransaction), args.Error(1)
}

func (m *mockAuthorizeUseCase) IssueCode(
	ctx context.Context,
	issueCodeInput *oauthDomain.IssueCodeInput,
) (*oauthDomain.IssueCodeOutput, error) {
	args := m.Called(ctx, issueCodeInput)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.IssueCodeOutput), args.Error(1)
}

func (m *mockAuthorizeUseCase) DeleteExpiredCodes(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
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
