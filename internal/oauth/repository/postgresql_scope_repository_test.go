package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyratox/lazuli-auth/internal/testutil"
)

func TestNewPostgreSQLScopeRepository(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLScopeRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &PostgreSQLScopeRepository{}, repo)
}

func TestPostgreSQLScopeRepository_Resolve_CreatesMissing(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScopeRepository(db)
	ctx := context.Background()

	scopes, err := repo.Resolve(ctx, []string{"profile.read", "profile.write"})
	require.NoError(t, err)
	require.Len(t, scopes, 2)

	assert.Equal(t, "profile.read", scopes[0].Name)
	assert.Equal(t, "profile.write", scopes[1].Name)
	assert.NotEqual(t, scopes[0].ID, scopes[1].ID)
}

func TestPostgreSQLScopeRepository_Resolve_ReturnsExisting(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScopeRepository(db)
	ctx := context.Background()

	first, err := repo.Resolve(ctx, []string{"profile.read"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Resolving again yields the same row, not a duplicate
	second, err := repo.Resolve(ctx, []string{"profile.read", "email"})
	require.NoError(t, err)
	require.Len(t, second, 2)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, "email", second[1].Name)
}

func TestPostgreSQLScopeRepository_Resolve_Empty(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScopeRepository(db)

	scopes, err := repo.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, scopes)
}
