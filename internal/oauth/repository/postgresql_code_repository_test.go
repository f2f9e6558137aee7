package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
	"github.com/tyratox/lazuli-auth/internal/testutil"
)

func newTestCode(
	t *testing.T,
	scopeRepo *PostgreSQLScopeRepository,
	clientID, userID uuid.UUID,
	codeHash string,
	expiresAt time.Time,
) *oauthDomain.Code {
	t.Helper()

	scopes, err := scopeRepo.Resolve(context.Background(), []string{"profile.read"})
	require.NoError(t, err)

	return &oauthDomain.Code{
		ID:        uuid.Must(uuid.NewV7()),
		CodeHash:  codeHash,
		ClientID:  clientID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		Scopes:    scopes,
		CreatedAt: time.Now().UTC(),
	}
}

func TestNewPostgreSQLCodeRepository(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLCodeRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &PostgreSQLCodeRepository{}, repo)
}

func TestPostgreSQLCodeRepository_Create(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	userID := testutil.CreateTestUser(t, db, "postgres", "owner@example.com")
	clientID := testutil.CreateTestClient(t, db, "postgres", "test-client", userID)

	scopeRepo := NewPostgreSQLScopeRepository(db)
	codeRepo := NewPostgreSQLCodeRepository(db)

	code := newTestCode(t, scopeRepo, clientID, userID, "code-hash-1", time.Now().UTC().Add(10*time.Minute))
	require.NoError(t, codeRepo.Create(ctx, code))

	retrieved, err := codeRepo.GetByCodeHash(ctx, "code-hash-1")
	require.NoError(t, err)

	assert.Equal(t, code.ID, retrieved.ID)
	assert.Equal(t, code.CodeHash, retrieved.CodeHash)
	assert.Equal(t, clientID, retrieved.ClientID)
	assert.Equal(t, userID, retrieved.UserID)
	assert.WithinDuration(t, code.ExpiresAt, retrieved.ExpiresAt, time.Second)

	require.Len(t, retrieved.Scopes, 1)
	assert.Equal(t, "profile.read", retrieved.Scopes[0].Name)
}

func TestPostgreSQLCodeRepository_GetByCodeHash_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLCodeRepository(db)

	_, err := repo.GetByCodeHash(context.Background(), "no-such-hash")
	assert.ErrorIs(t, err, oauthDomain.ErrCodeNotFound)
}

func TestPostgreSQLCodeRepository_Delete_ClaimsExactlyOnce(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	userID := testutil.CreateTestUser(t, db, "postgres", "owner@example.com")
	clientID := testutil.CreateTestClient(t, db, "postgres", "test-client", userID)

	scopeRepo := NewPostgreSQLScopeRepository(db)
	codeRepo := NewPostgreSQLCodeRepository(db)

	code := newTestCode(t, scopeRepo, clientID, userID, "claim-once", time.Now().UTC().Add(10*time.Minute))
	require.NoError(t, codeRepo.Create(ctx, code))

	// First delete claims the row
	affected, err := codeRepo.Delete(ctx, code.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Second delete finds nothing to claim
	affected, err = codeRepo.Delete(ctx, code.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	_, err = codeRepo.GetByCodeHash(ctx, "claim-once")
	assert.ErrorIs(t, err, oauthDomain.ErrCodeNotFound)
}

func TestPostgreSQLCodeRepository_DeleteExpired(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	userID := testutil.CreateTestUser(t, db, "postgres", "owner@example.com")
	clientID := testutil.CreateTestClient(t, db, "postgres", "test-client", userID)

	scopeRepo := NewPostgreSQLScopeRepository(db)
	codeRepo := NewPostgreSQLCodeRepository(db)

	now := time.Now().UTC()
	expired := newTestCode(t, scopeRepo, clientID, userID, "expired-code", now.Add(-time.Minute))
	live := newTestCode(t, scopeRepo, clientID, userID, "live-code", now.Add(10*time.Minute))
	require.NoError(t, codeRepo.Create(ctx, expired))
	require.NoError(t, codeRepo.Create(ctx, live))

	affected, err := codeRepo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = codeRepo.GetByCodeHash(ctx, "expired-code")
	assert.ErrorIs(t, err, oauthDomain.ErrCodeNotFound)

	_, err = codeRepo.GetByCodeHash(ctx, "live-code")
	assert.NoError(t, err)
}

func TestPostgreSQLCodeRepository_DeleteExpiredByClient(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	userID := testutil.CreateTestUser(t, db, "postgres", "owner@example.com")
	clientID := testutil.CreateTestClient(t, db, "postgres", "client-a", userID)
	otherClientID := testutil.CreateTestClient(t, db, "postgres", "client-b", userID)

	scopeRepo := NewPostgreSQLScopeRepository(db)
	codeRepo := NewPostgreSQLCodeRepository(db)

	now := time.Now().UTC()
	ownExpired := newTestCode(t, scopeRepo, clientID, userID, "own-expired", now.Add(-time.Minute))
	otherExpired := newTestCode(t, scopeRepo, otherClientID, userID, "other-expired", now.Add(-time.Minute))
	require.NoError(t, codeRepo.Create(ctx, ownExpired))
	require.NoError(t, codeRepo.Create(ctx, otherExpired))

	affected, err := codeRepo.DeleteExpiredByClient(ctx, clientID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Other client's expired code is untouched
	_, err = codeRepo.GetByCodeHash(ctx, "other-expired")
	assert.NoError(t, err)
}
