package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
	oauthService "github.com/tyratox/lazuli-auth/internal/oauth/service"
)

// mockHasherService is a mock implementation of HasherService for testing.
type mockHasherService struct {
	mock.Mock
}

func (m *mockHasherService) Hash(data string) (*oauthService.Hashed, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthService.Hashed), args.Error(1)
}

func (m *mockHasherService) HashWith(data, salt, algorithm string) (*oauthService.Hashed, error) {
	args := m.Called(data, salt, algorithm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthService.Hashed), args.Error(1)
}

func (m *mockHasherService) LookupHash(data string) string {
	args := m.Called(data)
	return args.String(0)
}

func (m *mockHasherService) DefaultAlgorithm() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockHasherService) Compare(a, b string) bool {
	args := m.Called(a, b)
	return args.Bool(0)
}

// mockGeneratorService is a mock implementation of GeneratorService for testing.
type mockGeneratorService struct {
	mock.Mock
}

func (m *mockGeneratorService) RandomString(length int) (string, error) {
	args := m.Called(length)
	return args.String(0), args.Error(1)
}

func (m *mockGeneratorService) HeaderSafeString(length int) (string, error) {
	args := m.Called(length)
	return args.String(0), args.Error(1)
}

// mockConsentTransactionStore is a mock implementation of ConsentTransactionStore for testing.
type mockConsentTransactionStore struct {
	mock.Mock
}

func (m *mockConsentTransactionStore) Create(tx *oauthDomain.ConsentTransaction) (string, error) {
	args := m.Called(tx)
	return args.String(0), args.Error(1)
}

func (m *mockConsentTransactionStore) Consume(id string) (*oauthDomain.ConsentTransaction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.ConsentTransaction), args.Error(1)
}

// mockClientRepository is a mock implementation of ClientRepository for testing.
type mockClientRepository struct {
	mock.Mock
}

func (m *mockClientRepository) Create(ctx context.Context, client *oauthDomain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *mockClientRepository) Update(ctx context.Context, client *oauthDomain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *mockClientRepository) UpdateSecret(
	ctx context.Context,
	clientID uuid.UUID,
	secretHash, secretSalt, secretAlgorithm string,
) error {
	args := m.Called(ctx, clientID, secretHash, secretSalt, secretAlgorithm)
	return args.Error(0)
}

func (m *mockClientRepository) Get(ctx context.Context, clientID uuid.UUID) (*oauthDomain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.Client), args.Error(1)
}

func (m *mockClientRepository) ListRedirectURIs(
	ctx context.Context,
	clientID uuid.UUID,
) ([]oauthDomain.RedirectURI, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]oauthDomain.RedirectURI), args.Error(1)
}

func (m *mockClientRepository) Delete(ctx context.Context, clientID uuid.UUID) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

// mockCodeRepository is a mock implementation of CodeRepository for testing.
type mockCodeRepository struct {
	mock.Mock
}

func (m *mockCodeRepository) Create(ctx context.Context, code *oauthDomain.Code) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *mockCodeRepository) GetByCodeHash(ctx context.Context, codeHash string) (*oauthDomain.Code, error) {
	args := m.Called(ctx, codeHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.Code), args.Error(1)
}

func (m *mockCodeRepository) Delete(ctx context.Context, codeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, codeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCodeRepository) DeleteExpiredByClient(
	ctx context.Context,
	clientID uuid.UUID,
	now time.Time,
) (int64, error) {
	args := m.Called(ctx, clientID, now)
	return args.Get(0).(int64), args.Error(1)
}

// mockTokenRepository is a mock implementation of TokenRepository for testing.
type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) Create(ctx context.Context, token *oauthDomain.AccessToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*oauthDomain.AccessToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.AccessToken), args.Error(1)
}

func (m *mockTokenRepository) UpdateExpiry(ctx context.Context, tokenID uuid.UUID, expiresAt time.Time) error {
	args := m.Called(ctx, tokenID, expiresAt)
	return args.Error(0)
}

func (m *mockTokenRepository) Delete(ctx context.Context, tokenID uuid.UUID) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *mockTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenRepository) ListScopeNamesForUserClient(
	ctx context.Context,
	userID, clientID uuid.UUID,
	now time.Time,
) ([]string, error) {
	args := m.Called(ctx, userID, clientID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// mockScopeRepository is a mock implementation of ScopeRepository for testing.
type mockScopeRepository struct {
	mock.Mock
}

func (m *mockScopeRepository) Resolve(ctx context.Context, names []string) ([]oauthDomain.Scope, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]oauthDomain.Scope), args.Error(1)
}

// mockUserRepository is a mock implementation of UserRepository for testing.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Get(ctx context.Context, userID uuid.UUID) (*identityDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*identityDomain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

func (m *mockUserRepository) UpdatePassword(
	ctx context.Context,
	userID uuid.UUID,
	passwordHash, passwordSalt, passwordAlgorithm string,
) error {
	args := m.Called(ctx, userID, passwordHash, passwordSalt, passwordAlgorithm)
	return args.Error(0)
}

// newScopes builds scope fixtures with fresh IDs for the given names.
func newScopes(names ...string) []oauthDomain.Scope {
	scopes := make([]oauthDomain.Scope, 0, len(names))
	for _, name := range names {
		scopes = append(scopes, oauthDomain.Scope{
			ID:        uuid.Must(uuid.NewV7()),
			Name:      name,
			CreatedAt: time.Now().UTC(),
		})
	}
	return scopes
}
