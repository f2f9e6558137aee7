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

// PostgreSQLTokenRepository implements access token persistence for
// PostgreSQL. Uses native UUID types with transaction support via
// database.GetTx().
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new AccessToken and its scope associations.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *oauthDomain.AccessToken) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO oauth_access_tokens (id, token_hash, oauth_client_id, user_id, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.TokenHash,
		token.ClientID,
		token.UserID,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return database.ClassifyError(err, "failed to create access token")
	}

	join := `INSERT INTO oauth_access_token_scopes (oauth_access_token_id, oauth_scope_id) VALUES ($1, $2)`
	for _, scope := range token.Scopes {
		if _, err := querier.ExecContext(ctx, join, token.ID, scope.ID); err != nil {
			return database.ClassifyError(err, "failed to attach scope to access token")
		}
	}
	return nil
}

// GetByTokenHash retrieves an AccessToken by its unsalted lookup hash,
// including its scope set. Returns ErrTokenNotFound if no row matches.
func (p *PostgreSQLTokenRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*oauthDomain.AccessToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, token_hash, oauth_client_id, user_id, expires_at, created_at
			  FROM oauth_access_tokens WHERE token_hash = $1`

	var token oauthDomain.AccessToken

	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.TokenHash,
		&token.ClientID,
		&token.UserID,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrTokenNotFound
		}
		return nil, database.ClassifyError(err, "failed to get access token")
	}

	scopes, err := p.listScopes(ctx, querier, token.ID)
	if err != nil {
		return nil, err
	}
	token.Scopes = scopes

	return &token, nil
}

// listScopes loads the scope set attached to an access token.
func (p *PostgreSQLTokenRepository) listScopes(
	ctx context.Context,
	querier database.Querier,
	tokenID uuid.UUID,
) ([]oauthDomain.Scope, error) {
	query := `SELECT s.id, s.name, s.created_at
			  FROM oauth_scopes s
			  JOIN oauth_access_token_scopes ts ON ts.oauth_scope_id = s.id
			  WHERE ts.oauth_access_token_id = $1`

	rows, err := querier.QueryContext(ctx, query, tokenID)
	if err != nil {
		return nil, database.ClassifyError(err, "failed to list token scopes")
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
		return nil, database.ClassifyError(err, "failed to list token scopes")
	}

	return scopes, nil
}

// UpdateExpiry persists a new expiry timestamp for the token (sliding expiry).
func (p *PostgreSQLTokenRepository) UpdateExpiry(
	ctx context.Context,
	tokenID uuid.UUID,
	expiresAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE oauth_access_tokens SET expires_at = $1 WHERE id = $2`

	_, err := querier.ExecContext(ctx, query, expiresAt, tokenID)
	if err != nil {
		return database.ClassifyError(err, "failed to update token expiry")
	}
	return nil
}

// Delete removes an AccessToken.
func (p *PostgreSQLTokenRepository) Delete(ctx context.Context, tokenID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM oauth_access_tokens WHERE id = $1`

	_, err := querier.ExecContext(ctx, query, tokenID)
	if err != nil {
		return database.ClassifyError(err, "failed to delete access token")
	}
	return nil
}

// DeleteExpired removes every access token whose expiry precedes now,
// returning the number of rows removed. Run opportunistically on every bearer
// validation; safe to run redundantly from concurrent requests.
func (p *PostgreSQLTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM oauth_access_tokens WHERE expires_at < $1`

	result, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return 0, database.ClassifyError(err, "failed to delete expired tokens")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, database.ClassifyError(err, "failed to read delete result")
	}
	return affected, nil
}

// ListScopeNamesForUserClient returns the union of scope names across the
// user's access tokens for the given client that are still live at now.
// Used by the approval decision gate to detect silent re-approval.
func (p *PostgreSQLTokenRepository) ListScopeNamesForUserClient(
	ctx context.Context,
	userID uuid.UUID,
	clientID uuid.UUID,
	now time.Time,
) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT DISTINCT s.name
			  FROM oauth_scopes s
			  JOIN oauth_access_token_scopes ts ON ts.oauth_scope_id = s.id
			  JOIN oauth_access_tokens t ON t.id = ts.oauth_access_token_id
			  WHERE t.user_id = $1 AND t.oauth_client_id = $2 AND t.expires_at > $3`

	rows, err := querier.QueryContext(ctx, query, userID, clientID, now)
	if err != nil {
		return nil, database.ClassifyError(err, "failed to list granted scopes")
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, database.ClassifyError(err, "failed to scan scope name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, database.ClassifyError(err, "failed to list granted scopes")
	}

	return names, nil
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL access token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}
