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

// PostgreSQLCodeRepository implements authorization code persistence for
// PostgreSQL. Codes are strictly single-use: Delete reports how many rows it
// removed so callers can use it as an atomic claim.
type PostgreSQLCodeRepository struct {
	db *sql.DB
}

// Create inserts a new Code and its scope associations.
func (p *PostgreSQLCodeRepository) Create(ctx context.Context, code *oauthDomain.Code) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO oauth_codes (id, code_hash, oauth_client_id, user_id, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		code.ID,
		code.CodeHash,
		code.ClientID,
		code.UserID,
		code.ExpiresAt,
		code.CreatedAt,
	)
	if err != nil {
		return database.ClassifyError(err, "failed to create code")
	}

	join := `INSERT INTO oauth_code_scopes (oauth_code_id, oauth_scope_id) VALUES ($1, $2)`
	for _, scope := range code.Scopes {
		if _, err := querier.ExecContext(ctx, join, code.ID, scope.ID); err != nil {
			return database.ClassifyError(err, "failed to attach scope to code")
		}
	}
	return nil
}

// GetByCodeHash retrieves a Code by its unsalted lookup hash, including its
// scope set. Returns ErrCodeNotFound if no row matches.
func (p *PostgreSQLCodeRepository) GetByCodeHash(
	ctx context.Context,
	codeHash string,
) (*oauthDomain.Code, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, code_hash, oauth_client_id, user_id, expires_at, created_at
			  FROM oauth_codes WHERE code_hash = $1`

	var code oauthDomain.Code

	err := querier.QueryRowContext(ctx, query, codeHash).Scan(
		&code.ID,
		&code.CodeHash,
		&code.ClientID,
		&code.UserID,
		&code.ExpiresAt,
		&code.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrCodeNotFound
		}
		return nil, database.ClassifyError(err, "failed to get code")
	}

	scopes, err := p.listScopes(ctx, querier, code.ID)
	if err != nil {
		return nil, err
	}
	code.Scopes = scopes

	return &code, nil
}

// listScopes loads the scope set attached to a code.
func (p *PostgreSQLCodeRepository) listScopes(
	ctx context.Context,
	querier database.Querier,
	codeID uuid.UUID,
) ([]oauthDomain.Scope, error) {
	query := `SELECT s.id, s.name, s.created_at
			  FROM oauth_scopes s
			  JOIN oauth_code_scopes cs ON cs.oauth_scope_id = s.id
			  WHERE cs.oauth_code_id = $1`

	rows, err := querier.QueryContext(ctx, query, codeID)
	if err != nil {
		return nil, database.ClassifyError(err, "failed to list code scopes")
	}
	defer rows.Close()

	scopes := []oauthDomain.Scope{}
	for rows.Next() {
		var scope oauthDomain.Scope
		if err := rows.Scan(&scope.ID, &scope.Name, &scope.CreatedAt); err != nil {
			return nil, database.ClassifyError(err, "failed to scan scope")
		}
		scopes = append(scopes, scope)
	}
	if err := rows.Err(); err != nil {
		return nil, database.ClassifyError(err, "failed to list code scopes")
	}

	return scopes, nil
}

// Delete removes a Code and returns the number of rows removed. A return of
// zero means another request already claimed the code; callers rely on this
// as the atomic single-redemption guarantee, so the delete must never be
// wrapped in a weaker read-then-write sequence.
func (p *PostgreSQLCodeRepository) Delete(ctx context.Context, codeID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM oauth_codes WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, codeID)
	if err != nil {
		return 0, database.ClassifyError(err, "failed to delete code")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, database.ClassifyError(err, "failed to read delete result")
	}
	return affected, nil
}

// DeleteExpired removes every code whose expiry precedes now, returning the
// number of rows removed.
func (p *PostgreSQLCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM oauth_codes WHERE expires_at < $1`

	result, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return 0, database.ClassifyError(err, "failed to delete expired codes")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, database.ClassifyError(err, "failed to read delete result")
	}
	return affected, nil
}

// DeleteExpiredByClient removes expired codes belonging to a single client.
// Used opportunistically during token exchange.
func (p *PostgreSQLCodeRepository) DeleteExpiredByClient(
	ctx context.Context,
	clientID uuid.UUID,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM oauth_codes WHERE oauth_client_id = $1 AND expires_at < $2`

	result, err := querier.ExecContext(ctx, query, clientID, now)
	if err != nil {
		return 0, database.ClassifyError(err, "failed to delete expired client codes")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, database.ClassifyError(err, "failed to read delete result")
	}
	return affected, nil
}

// NewPostgreSQLCodeRepository creates a new PostgreSQL Code repository.
func NewPostgreSQLCodeRepository(db *sql.DB) *PostgreSQLCodeRepository {
	return &PostgreSQLCodeRepository{db: db}
}
