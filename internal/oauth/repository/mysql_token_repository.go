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

// MySQLTokenRepository implements access token persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLTokenRepository struct {
	db *sql.DB
}

// marshalNullableUUID converts an optional UUID to its BINARY(16)
// representation, or nil for user-issued tokens without a client.
func marshalNullableUUID(id *uuid.UUID) ([]byte, error) {
	if id == nil {
		return nil, nil
	}
	return marshalUUID(*id)
}

// Create inserts a new AccessToken and its scope associations.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *oauthDomain.AccessToken) error {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(token.ID)
	if err != nil {
		return err
	}
	clientID, err := marshalNullableUUID(token.ClientID)
	if err != nil {
		return err
	}
	userID, err := marshalUUID(token.UserID)
	if err != nil {
		return err
	}

	query := `INSERT INTO oauth_access_tokens (id, token_hash, oauth_client_id, user_id, expires_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, token.TokenHash, clientID, userID, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return database.ClassifyError(err, "failed to create access token")
	}

	join := `INSERT INTO oauth_access_token_scopes (oauth_access_token_id, oauth_scope_id) VALUES (?, ?)`
	for _, scope := range token.Scopes {
		scopeID, err := marshalUUID(scope.ID)
		if err != nil {
			return err
		}
		if _, err := querier.ExecContext(ctx, join, id, scopeID); err != nil {
			return database.ClassifyError(err, "failed to attach scope to access token")
		}
	}
	return nil
}

// GetByTokenHash retrieves an AccessToken by its unsalted lookup hash,
// including its scope set. Returns ErrTokenNotFound if no row matches.
func (m *MySQLTokenRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*oauthDomain.AccessToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, token_hash, oauth_client_id, user_id, expires_at, created_at
			  FROM oauth_access_tokens WHERE token_hash = ?`

	var token oauthDomain.AccessToken
	var rawID, rawClientID, rawUserID []byte

	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&rawID,
		&token.TokenHash,
		&rawClientID,
		&rawUserID,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrTokenNotFound
		}
		return nil, database.ClassifyError(err, "failed to get access token")
	}

	if err := token.ID.UnmarshalBinary(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token id")
	}
	if err := token.UserID.UnmarshalBinary(rawUserID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}
	if rawClientID != nil {
		var clientID uuid.UUID
		if err := clientID.UnmarshalBinary(rawClientID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal client id")
		}
		token.ClientID = &clientID
	}

	scopes, err := m.listScopes(ctx, querier, token.ID)
	if err != nil {
		return nil, err
	}
	token.Scopes = scopes

	return &token, nil
}

// listScopes loads the scope set attached to an access token.
func (m *MySQLTokenRepository) listScopes(
	ctx context.Context,
	querier database.Querier,
	tokenID uuid.UUID,
) ([]oauthDomain.Scope, error) {
	id, err := marshalUUID(tokenID)
	if err != nil {
		return nil, err
	}

	query := `SELECT s.id, s.name, s.created_at
			  FROM oauth_scopes s
			  JOIN oauth_access_token_scopes ts ON ts.oauth_scope_id = s.id
			  WHERE ts.oauth_access_token_id = ?`

	rows, err := querier.QueryContext(ctx, query, id)
	if err != nil {
		return nil, database.ClassifyError(err, "failed to list token scopes")
	}
	defer rows.Close()

	scopes := []oauthDomain.Scope{}
	for rows.Next() {
		var scope oauthDomain.Scope
		var rawID []byte
		if err := rows.Scan(&rawID, &scope.Name, &scope.CreatedAt); err != nil {
			return nil, database.ClassifyError(err, "failed to scan scope")
		}
		if err := scope.ID.UnmarshalBinary(rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal scope id")
		}
		scopes = append(scopes, scope)
	}
	if err := rows.Err(); err != nil {
		return nil, database.ClassifyError(err, "failed to list token scopes")
	}

	return scopes, nil
}

// UpdateExpiry persists a new expiry timestamp for the token (sliding expiry).
func (m *MySQLTokenRepository) UpdateExpiry(
	ctx context.Context,
	tokenID uuid.UUID,
	expiresAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(tokenID)
	if err != nil {
		return err
	}

	query := `UPDATE oauth_access_tokens SET expires_at = ? WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, expiresAt, id)
	if err != nil {
		return database.ClassifyError(err, "failed to update token expiry")
	}
	return nil
}

// Delete removes an AccessToken.
func (m *MySQLTokenRepository) Delete(ctx context.Context, tokenID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(tokenID)
	if err != nil {
		return err
	}

	query := `DELETE FROM oauth_access_tokens WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, id)
	if err != nil {
		return database.ClassifyError(err, "failed to delete access token")
	}
	return nil
}

// DeleteExpired removes every access token whose expiry precedes now.
func (m *MySQLTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM oauth_access_tokens WHERE expires_at < ?`

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
func (m *MySQLTokenRepository) ListScopeNamesForUserClient(
	ctx context.Context,
	userID uuid.UUID,
	clientID uuid.UUID,
	now time.Time,
) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

	rawUserID, err := marshalUUID(userID)
	if err != nil {
		return nil, err
	}
	rawClientID, err := marshalUUID(clientID)
	if err != nil {
		return nil, err
	}

	query := `SELECT DISTINCT s.name
			  FROM oauth_scopes s
			  JOIN oauth_access_token_scopes ts ON ts.oauth_scope_id = s.id
			  JOIN oauth_access_tokens t ON t.id = ts.oauth_access_token_id
			  WHERE t.user_id = ? AND t.oauth_client_id = ? AND t.expires_at > ?`

	rows, err := querier.QueryContext(ctx, query, rawUserID, rawClientID, now)
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

// NewMySQLTokenRepository creates a new MySQL access token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}
