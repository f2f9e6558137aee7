package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tyratox/lazuli-auth/internal/database"
	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// MySQLScopeRepository implements Scope persistence for MySQL.
// Uses BINARY(16) for UUIDs; find-or-create races are resolved by the unique
// name constraint (INSERT IGNORE) plus a refetch.
type MySQLScopeRepository struct {
	db *sql.DB
}

// Resolve finds or creates a scope row for each name, in input order.
func (m *MySQLScopeRepository) Resolve(
	ctx context.Context,
	names []string,
) ([]oauthDomain.Scope, error) {
	querier := database.GetTx(ctx, m.db)

	scopes := make([]oauthDomain.Scope, 0, len(names))
	for _, name := range names {
		scope, err := m.resolveOne(ctx, querier, name)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, *scope)
	}
	return scopes, nil
}

// resolveOne finds or creates a single scope row.
func (m *MySQLScopeRepository) resolveOne(
	ctx context.Context,
	querier database.Querier,
	name string,
) (*oauthDomain.Scope, error) {
	id, err := marshalUUID(uuid.Must(uuid.NewV7()))
	if err != nil {
		return nil, err
	}

	insert := `INSERT IGNORE INTO oauth_scopes (id, name, created_at) VALUES (?, ?, ?)`

	if _, err := querier.ExecContext(ctx, insert, id, name, time.Now().UTC()); err != nil {
		return nil, database.ClassifyError(err, "failed to insert scope")
	}

	query := `SELECT id, name, created_at FROM oauth_scopes WHERE name = ?`

	var scope oauthDomain.Scope
	var rawID []byte

	err = querier.QueryRowContext(ctx, query, name).Scan(&rawID, &scope.Name, &scope.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrScopeNotFound
		}
		return nil, database.ClassifyError(err, "failed to get scope")
	}

	if err := scope.ID.UnmarshalBinary(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal scope id")
	}

	return &scope, nil
}

// NewMySQLScopeRepository creates a new MySQL Scope repository.
func NewMySQLScopeRepository(db *sql.DB) *MySQLScopeRepository {
	return &MySQLScopeRepository{db: db}
}
