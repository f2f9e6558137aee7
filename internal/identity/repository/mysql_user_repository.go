package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/tyratox/lazuli-auth/internal/database"
	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
)

// MySQLUserRepository implements User persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLUserRepository struct {
	db *sql.DB
}

// marshalUUID converts a UUID to its binary representation for MySQL.
func marshalUUID(id uuid.UUID) ([]byte, error) {
	raw, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal uuid")
	}
	return raw, nil
}

// Create inserts a new User into the MySQL database.
func (m *MySQLUserRepository) Create(ctx context.Context, user *identityDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(user.ID)
	if err != nil {
		return err
	}
	permissions, err := json.Marshal(user.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permissions")
	}

	query := `INSERT INTO users
			  (id, email, display_name, password_hash, password_salt, password_algorithm, permissions, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.PasswordSalt,
		user.PasswordAlgorithm,
		permissions,
		user.CreatedAt,
	)
	if err != nil {
		return database.ClassifyError(err, "failed to create user")
	}
	return nil
}

// Get retrieves a User by ID. Returns ErrUserNotFound if the user doesn't exist.
func (m *MySQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*identityDomain.User, error) {
	id, err := marshalUUID(userID)
	if err != nil {
		return nil, err
	}
	return m.getByField(ctx, "id", id)
}

// GetByEmail retrieves a User by email. Returns ErrUserNotFound if no user
// has the email.
func (m *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*identityDomain.User, error) {
	return m.getByField(ctx, "email", email)
}

// getByField retrieves a user by a single unique column.
func (m *MySQLUserRepository) getByField(
	ctx context.Context,
	field string,
	value any,
) (*identityDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, email, display_name, password_hash, password_salt, password_algorithm, permissions, created_at
			  FROM users WHERE ` + field + ` = ?`

	var user identityDomain.User
	var rawID []byte
	var permissions []byte

	err := querier.QueryRowContext(ctx, query, value).Scan(
		&rawID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.PasswordSalt,
		&user.PasswordAlgorithm,
		&permissions,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrUserNotFound
		}
		return nil, database.ClassifyError(err, "failed to get user")
	}

	if err := user.ID.UnmarshalBinary(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}
	if err := json.Unmarshal(permissions, &user.Permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal permissions")
	}

	return &user, nil
}

// UpdatePassword persists a newly hashed password with its salt and
// algorithm. Used both for explicit password changes and for
// migration-on-verify upgrades.
func (m *MySQLUserRepository) UpdatePassword(
	ctx context.Context,
	userID uuid.UUID,
	passwordHash, passwordSalt, passwordAlgorithm string,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(userID)
	if err != nil {
		return err
	}

	query := `UPDATE users
			  SET password_hash = ?, password_salt = ?, password_algorithm = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, passwordHash, passwordSalt, passwordAlgorithm, id)
	if err != nil {
		return database.ClassifyError(err, "failed to update password")
	}
	return nil
}

// Delete removes a User. Owned clients, codes, and tokens cascade through
// foreign key constraints.
func (m *MySQLUserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(userID)
	if err != nil {
		return err
	}

	query := `DELETE FROM users WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, id)
	if err != nil {
		return database.ClassifyError(err, "failed to delete user")
	}
	return nil
}

// NewMySQLUserRepository creates a new MySQL User repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}
