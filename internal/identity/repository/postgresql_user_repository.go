// Package repository implements data persistence for identity entities.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). Permission sets are stored as JSON documents.
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

// PostgreSQLUserRepository implements User persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new User into the PostgreSQL database.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *identityDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	permissions, err := json.Marshal(user.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permissions")
	}

	query := `INSERT INTO users
			  (id, email, display_name, password_hash, password_salt, password_algorithm, permissions, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		user.ID,
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
func (p *PostgreSQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*identityDomain.User, error) {
	return p.getByField(ctx, "id", userID)
}

// GetByEmail retrieves a User by email. Returns ErrUserNotFound if no user
// has the email.
func (p *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*identityDomain.User, error) {
	return p.getByField(ctx, "email", email)
}

// getByField retrieves a user by a single unique column.
func (p *PostgreSQLUserRepository) getByField(
	ctx context.Context,
	field string,
	value any,
) (*identityDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, email, display_name, password_hash, password_salt, password_algorithm, permissions, created_at
			  FROM users WHERE ` + field + ` = $1`

	var user identityDomain.User
	var permissions []byte

	err := querier.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
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

	if err := json.Unmarshal(permissions, &user.Permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal permissions")
	}

	return &user, nil
}

// UpdatePassword persists a newly hashed password with its salt and
// algorithm. Used both for explicit password changes and for
// migration-on-verify upgrades.
func (p *PostgreSQLUserRepository) UpdatePassword(
	ctx context.Context,
	userID uuid.UUID,
	passwordHash, passwordSalt, passwordAlgorithm string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE users
			  SET password_hash = $1, password_salt = $2, password_algorithm = $3
			  WHERE id = $4`

	_, err := querier.ExecContext(ctx, query, passwordHash, passwordSalt, passwordAlgorithm, userID)
	if err != nil {
		return database.ClassifyError(err, "failed to update password")
	}
	return nil
}

// Delete removes a User. Owned clients, codes, and tokens cascade through
// foreign key constraints.
func (p *PostgreSQLUserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM users WHERE id = $1`

	_, err := querier.ExecContext(ctx, query, userID)
	if err != nil {
		return database.ClassifyError(err, "failed to delete user")
	}
	return nil
}

// NewPostgreSQLUserRepository creates a new PostgreSQL User repository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}
