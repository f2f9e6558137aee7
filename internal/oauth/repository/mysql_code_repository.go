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

// MySQLCodeRepository implements authorization code persistence for MySQL.
// Uses BINARY(16) for UUIDs; Delete reports affected rows so callers can use
// it as an atomic claim.
type MySQLCodeRepository struct {
	db *sql.DB
}

// Create inserts a new Code and its scope associations.
func (m *MySQLCodeRepository) Create(ctx context.Context, code *oauthDomain.Code) error {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(code.ID)
	if err != nil {
		return err
	}
	clientID, err := marshalUUID(code.ClientID)
	if err != nil {
		return err
	}
	userID, err := marshalUUID(code.UserID)
	if err != nil {
		return err
	}

	query := `INSERT INTO oauth_codes (id, code_hash, oauth_client_id, user_id, expires_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, code.CodeHash, clientID, userID, code.ExpiresAt, code.CreatedAt)
	if err != nil {
		return database.ClassifyError(err, "failed to create code")
	}

	join := `INSERT INTO oauth_code_scopes (oauth_code_id, oauth_scope_id) VALUES (?, ?)`
	for _, scope := range code.Scopes {
		scopeID, err := marshalUUID(scope.ID)
		if err != nil {
			return err
		}
		if _, err := querier.ExecContext(ctx, join, id, scopeID); err != nil {
			return database.ClassifyError(err, "failed to attach scope to code")
		}
	}
	return nil
}

// GetByCodeHash retrieves a Code by its unsalted lookup hash, including its
// scope set. Returns ErrCodeNotFound if no row matches.
func (m *MySQLCodeRepository) GetByCodeHash(
	ctx context.Context,
	codeHash string,
) (*oauthDomain.Code, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, code_hash, oauth_client_id, user_id, expires_at, created_at
			  FROM oauth_codes WHERE code_hash = ?`

	var code oauthDomain.Code
	var rawID, rawClientID, rawUserID []byte

	err := querier.QueryRowContext(ctx, query, codeHash).Scan(
		&rawID,
		&code.CodeHash,
		&rawClientID,
		&rawUserID,
		&code.ExpiresAt,
		&code.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrCodeNotFound
		}
		return nil, database.ClassifyError(err, "failed to get code")
	}

	if err := code.ID.UnmarshalBinary(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal code id")
	}
	if err := code.ClientID.UnmarshalBinary(rawClientID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client id")
	}
	if err := code.UserID.UnmarshalBinary(rawUserID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	scopes, err := m.listScopes(ctx, querier, code.ID)
	if err != nil {
		return nil, err
	}
	code.Scopes = scopes

	return &code, nil
}

// listScopes loads the scope set attached to a code.
func (m *MySQLCodeRepository) listScopes(
	ctx context.Context,
	querier database.Querier,
	codeID uuid.UUID,
) ([]oauthDomain.Scope, error) {
	id, err := marshalUUID(codeID)
	if err != nil {
		return nil, err
	}

	query := `SELECT s.id, s.name, s.created_at
			  FROM oauth_scopes s
			  JOIN oauth_code_scopes cs ON cs.oauth_scope_id = s.id
			  WHERE cs.oauth_code_id = ?`

	rows, err := querier.QueryContext(ctx, query, id)
	if err != nil {
		return nil, database.ClassifyError(err, "failed to list code scopes")
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
		return nil, database.ClassifyError(err, "failed to list code scopes")
	}

	return scopes, nil
}

// Delete removes a Code and returns the number of rows removed. Zero rows
// means another request already claimed the code.
func (m *MySQLCodeRepository) Delete(ctx context.Context, codeID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(codeID)
	if err != nil {
		return 0, err
	}

	query := `DELETE FROM oauth_codes WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return 0, database.ClassifyError(err, "failed to delete code")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, database.ClassifyError(err, "failed to read delete result")
	}
	return affected, nil
}

// DeleteExpired removes every code whose expiry precedes now.
func (m *MySQLCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM oauth_codes WHERE expires_at < ?`

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
func (m *MySQLCodeRepository) DeleteExpiredByClient(
	ctx context.Context,
	clientID uuid.UUID,
	now time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(clientID)
	if err != nil {
		return 0, err
	}

	query := `DELETE FROM oauth_codes WHERE oauth_client_id = ? AND expires_at < ?`

	result, err := querier.ExecContext(ctx, query, id, now)
	if err != nil {
		return 0, database.ClassifyError(err, "failed to delete expired client codes")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, database.ClassifyError(err, "failed to read delete result")
	}
	return affected, nil
}

// NewMySQLCodeRepository creates a new MySQL Code repository.
func NewMySQLCodeRepository(db *sql.DB) *MySQLCodeRepository {
	return &MySQLCodeRepository{db: db}
}
