package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

func newBearerUseCase(
	tokenRepo *mockTokenRepository,
	userRepo *mockUserRepository,
	hasher *mockHasherService,
) BearerUseCase {
	return NewBearerUseCase(testConfig(), testLogger(), tokenRepo, userRepo, hasher)
}

func newTestBearerToken(userID uuid.UUID, expiresAt time.Time) *oauthDomain.AccessToken {
	clientID := uuid.Must(uuid.NewV7())
	return &oauthDomain.AccessToken{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: "token-hash",
		ClientID:  &clientID,
		UserID:    userID,
		Scopes:    newScopes("profile.read"),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
}

func newTestBearerUser(id uuid.UUID, permissions ...string) *identityDomain.User {
	return &identityDomain.User{
		ID:          id,
		Email:       "user@example.com",
		DisplayName: "Test User",
		Permissions: permissions,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestBearerUseCase_Validate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())

	t.Run("Success_SlidesExpiryForward", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockUserRepo := &mockUserRepository{}
		mockHasher := &mockHasherService{}

		token := newTestBearerToken(userID, time.Now().UTC().Add(time.Minute))
		user := newTestBearerUser(userID, "member")

		mockTokenRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()
		mockHasher.On("LookupHash", "plain-token").Return("token-hash").Once()
		mockTokenRepo.On("GetByTokenHash", ctx, "token-hash").Return(token, nil).Once()
		mockUserRepo.On("Get", ctx, userID).Return(user, nil).Once()
		mockTokenRepo.On("UpdateExpiry", ctx, token.ID, mock.MatchedBy(func(expiresAt time.Time) bool {
			// Window slides a full lifetime forward from now
			return expiresAt.After(time.Now().UTC().Add(59 * time.Minute))
		})).
			Return(nil).
			Once()

		uc := newBearerUseCase(mockTokenRepo, mockUserRepo, mockHasher)

		gotUser, gotToken, err := uc.Validate(ctx, "plain-token", []string{"member"})

		require.NoError(t, err)
		assert.Equal(t, user, gotUser)
		assert.Equal(t, token, gotToken)
		mockTokenRepo.AssertExpectations(t)
	})

	t.Run("Success_SweepFailureDoesNotBlockValidation", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockUserRepo := &mockUserRepository{}
		mockHasher := &mockHasherService{}

		token := newTestBearerToken(userID, time.Now().UTC().Add(time.Minute))
		user := newTestBearerUser(userID, "member")

		mockTokenRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).
			Return(int64(0), assert.AnError).
			Once()
		mockHasher.On("LookupHash", "plain-token").Return("token-hash").Once()
		mockTokenRepo.On("GetByTokenHash", ctx, "token-hash").Return(token, nil).Once()
		mockUserRepo.On("Get", ctx, userID).Return(user, nil).Once()
		mockTokenRepo.On("UpdateExpiry", ctx, token.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

		uc := newBearerUseCase(mockTokenRepo, mockUserRepo, mockHasher)

		gotUser, _, err := uc.Validate(ctx, "plain-token", nil)

		assert.NoError(t, err)
		assert.Equal(t, user, gotUser)
	})

	t.Run("Error_UnknownTokenFoldsIntoInvalidToken", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockHasher := &mockHasherService{}

		mockTokenRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()
		mockHasher.On("LookupHash", "bogus-token").Return("bogus-hash").Once()
		mockTokenRepo.On("GetByTokenHash", ctx, "bogus-hash").Return(nil, oauthDomain.ErrTokenNotFound).Once()

		uc := newBearerUseCase(mockTokenRepo, &mockUserRepository{}, mockHasher)

		gotUser, gotToken, err := uc.Validate(ctx, "bogus-token", nil)

		assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
		assert.Nil(t, gotUser)
		assert.Nil(t, gotToken)
	})

	t.Run("Error_ExpiredTokenRejectedAfterFailedSweep", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockHasher := &mockHasherService{}

		expiredToken := newTestBearerToken(userID, time.Now().UTC().Add(-time.Minute))

		mockTokenRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).
			Return(int64(0), assert.AnError).
			Once()
		mockHasher.On("LookupHash", "plain-token").Return("token-hash").Once()
		mockTokenRepo.On("GetByTokenHash", ctx, "token-hash").Return(expiredToken, nil).Once()

		uc := newBearerUseCase(mockTokenRepo, &mockUserRepository{}, mockHasher)

		gotUser, gotToken, err := uc.Validate(ctx, "plain-token", nil)

		assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
		assert.Nil(t, gotUser)
		assert.Nil(t, gotToken)
		mockTokenRepo.AssertNotCalled(t, "UpdateExpiry", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_OrphanedTokenDeletedOnSight", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockUserRepo := &mockUserRepository{}
		mockHasher := &mockHasherService{}

		token := newTestBearerToken(userID, time.Now().UTC().Add(time.Minute))

		mockTokenRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()
		mockHasher.On("LookupHash", "plain-token").Return("token-hash").Once()
		mockTokenRepo.On("GetByTokenHash", ctx, "token-hash").Return(token, nil).Once()
		mockUserRepo.On("Get", ctx, userID).Return(nil, identityDomain.ErrUserNotFound).Once()
		mockTokenRepo.On("Delete", ctx, token.ID).Return(nil).Once()

		uc := newBearerUseCase(mockTokenRepo, mockUserRepo, mockHasher)

		gotUser, gotToken, err := uc.Validate(ctx, "plain-token", nil)

		assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
		assert.Nil(t, gotUser)
		assert.Nil(t, gotToken)
		mockTokenRepo.AssertExpectations(t)
	})

	t.Run("Error_InsufficientPermissions", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockUserRepo := &mockUserRepository{}
		mockHasher := &mockHasherService{}

		token := newTestBearerToken(userID, time.Now().UTC().Add(time.Minute))
		user := newTestBearerUser(userID, "member")

		mockTokenRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()
		mockHasher.On("LookupHash", "plain-token").Return("token-hash").Once()
		mockTokenRepo.On("GetByTokenHash", ctx, "token-hash").Return(token, nil).Once()
		mockUserRepo.On("Get", ctx, userID).Return(user, nil).Once()
		mockTokenRepo.On("UpdateExpiry", ctx, token.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

		uc := newBearerUseCase(mockTokenRepo, mockUserRepo, mockHasher)

		gotUser, gotToken, err := uc.Validate(ctx, "plain-token", []string{"admin.users"})

		assert.ErrorIs(t, err, oauthDomain.ErrInsufficientPermissions)
		assert.Nil(t, gotUser)
		assert.Nil(t, gotToken)
	})

	t.Run("Success_HierarchicalPermissionCoversRequired", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockUserRepo := &mockUserRepository{}
		mockHasher := &mockHasherService{}

		token := newTestBearerToken(userID, time.Now().UTC().Add(time.Minute))
		user := newTestBearerUser(userID, "admin")

		mockTokenRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()
		mockHasher.On("LookupHash", "plain-token").Return("token-hash").Once()
		mockTokenRepo.On("GetByTokenHash", ctx, "token-hash").Return(token, nil).Once()
		mockUserRepo.On("Get", ctx, userID).Return(user, nil).Once()
		mockTokenRepo.On("UpdateExpiry", ctx, token.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

		uc := newBearerUseCase(mockTokenRepo, mockUserRepo, mockHasher)

		gotUser, _, err := uc.Validate(ctx, "plain-token", []string{"admin.users.read"})

		assert.NoError(t, err)
		assert.Equal(t, user, gotUser)
	})

	t.Run("Error_ExpiryUpdateFailureRejectsToken", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockUserRepo := &mockUserRepository{}
		mockHasher := &mockHasherService{}

		token := newTestBearerToken(userID, time.Now().UTC().Add(time.Minute))
		user := newTestBearerUser(userID, "member")

		mockTokenRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()
		mockHasher.On("LookupHash", "plain-token").Return("token-hash").Once()
		mockTokenRepo.On("GetByTokenHash", ctx, "token-hash").Return(token, nil).Once()
		mockUserRepo.On("Get", ctx, userID).Return(user, nil).Once()
		mockTokenRepo.On("UpdateExpiry", ctx, token.ID, mock.AnythingOfType("time.Time")).
			Return(assert.AnError).
			Once()

		uc := newBearerUseCase(mockTokenRepo, mockUserRepo, mockHasher)

		gotUser, gotToken, err := uc.Validate(ctx, "plain-token", nil)

		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, gotUser)
		assert.Nil(t, gotToken)
	})

	t.Run("Success_TransientTokenLookupRetriedOnce", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockUserRepo := &mockUserRepository{}
		mockHasher := &mockHasherService{}

		token := newTestBearerToken(userID, time.Now().UTC().Add(time.Minute))
		user := newTestBearerUser(userID, "member")

		mockTokenRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()
		// The retried lookup re-hashes the token
		mockHasher.On("LookupHash", "plain-token").Return("token-hash").Times(2)
		mockTokenRepo.On("GetByTokenHash", ctx, "token-hash").Return(nil, apperrors.ErrTransient).Once()
		mockTokenRepo.On("GetByTokenHash", ctx, "token-hash").Return(token, nil).Once()
		mockUserRepo.On("Get", ctx, userID).Return(user, nil).Once()
		mockTokenRepo.On("UpdateExpiry", ctx, token.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

		uc := newBearerUseCase(mockTokenRepo, mockUserRepo, mockHasher)

		gotUser, _, err := uc.Validate(ctx, "plain-token", []string{"member"})

		require.NoError(t, err)
		assert.Equal(t, user, gotUser)
		mockTokenRepo.AssertExpectations(t)
	})
}

func TestBearerUseCase_ValidateSoft(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())

	t.Run("Success_ReturnsUserAndToken", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockUserRepo := &mockUserRepository{}
		mockHasher := &mockHasherService{}

		token := newTestBearerToken(userID, time.Now().UTC().Add(time.Minute))
		user := newTestBearerUser(userID, "member")

		mockTokenRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()
		mockHasher.On("LookupHash", "plain-token").Return("token-hash").Once()
		mockTokenRepo.On("GetByTokenHash", ctx, "token-hash").Return(token, nil).Once()
		mockUserRepo.On("Get", ctx, userID).Return(user, nil).Once()
		mockTokenRepo.On("UpdateExpiry", ctx, token.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

		uc := newBearerUseCase(mockTokenRepo, mockUserRepo, mockHasher)

		gotUser, gotToken := uc.ValidateSoft(ctx, "plain-token")

		assert.Equal(t, user, gotUser)
		assert.Equal(t, token, gotToken)
	})

	t.Run("NilOnInvalidToken", func(t *testing.T) {
		mockTokenRepo := &mockTokenRepository{}
		mockHasher := &mockHasherService{}

		mockTokenRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()
		mockHasher.On("LookupHash", "bogus-token").Return("bogus-hash").Once()
		mockTokenRepo.On("GetByTokenHash", ctx, "bogus-hash").Return(nil, oauthDomain.ErrTokenNotFound).Once()

		uc := newBearerUseCase(mockTokenRepo, &mockUserRepository{}, mockHasher)

		gotUser, gotToken := uc.ValidateSoft(ctx, "bogus-token")

		assert.Nil(t, gotUser)
		assert.Nil(t, gotToken)
	})
}
