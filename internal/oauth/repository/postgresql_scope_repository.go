package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tyratox/lazuli-auth/internal/database"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// PostgreSQLScopeRepository implements Scope persistence for PostgreSQL.
// Scope names are unique; concurrent find-or-create races are resolved by the
// unique constraint plus a refetch.
type PostgreSQLScopeRepository struct {
	db *sql.DB
}

// Resolve finds or creates a scope row for each name, in input order.
// Safe to call concurrently with overlapping scope sets: the insert is a
// no-op on conflict and the following select observes the winner's row.
func (p *PostgreSQLScopeRepository) Resolve(
	ctx context.Context,
	names []string,
) ([]oauthDomain.Scope, error) {
	querier := database.GetTx(ctx, p.db)

	scopes := make([]oauthDomain.Scope, 0, len(names))
	for _, name := range names {
		scope, err := p.resolveOne(ctx, querier, name)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, *scope)
	}
	return scopes, nil
}

// resolveOne finds or creates a single scope row.
func (p *PostgreSQLScopeRepository) resolveOne(
	ctx context.Context,
	querier database.Querier,
	name string,
) (*oauthDomain.Scope, error) {
	insert := `INSERT INTO oauth_scopes (id, name, created_at)
			   VALUES ($1, $2, $3)
			   ON CONFLICT (name) DO NOTHING`

	_, err := querier.ExecContext(ctx, insert, uuid.Must(uuid.NewV7()), name, time.Now().UTC())
	if err != nil {
		return nil, database.ClassifyError(err, "failed to insert scope")
	}

	query := `SELECT id, name, created_at FROM oauth_scopes WHERE name = $1`

	var scope oauthDomain.Scope
	err = querier.QueryRowContext(ctx, query, name).Scan(&scope.ID, &scope.Name, &scope.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrScopeNotFound
		}
		return nil, database.ClassifyError(err, "failed to get scope")
	}

	return &scope, nil
}

// NewPostgreSQLScopeRepository creates a new PostgreSQL Scope repository.
func NewPostgreSQLScopeRepository(db *sql.DB) *PostgreSQLScopeRepository {
	return &PostgreSQLScopeRepository{db: db}
}
