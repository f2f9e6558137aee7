// Package repository implements data persistence for the OAuth2 entities.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16)
// types. Store failures are classified so callers can tell transient
// infrastructure errors apart from protocol-level denials.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/tyratox/lazuli-auth/internal/database"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// PostgreSQLClientRepository implements Client persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLClientRepository struct {
	db *sql.DB
}

// Create inserts a new Client and its redirect URIs into the PostgreSQL database.
func (p *PostgreSQLClientRepository) Create(ctx context.Context, client *oauthDomain.Client) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO oauth_clients
			  (id, name, secret_hash, secret_salt, secret_algorithm, trusted, user_id, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		client.ID,
		client.Name,
		client.SecretHash,
		client.SecretSalt,
		client.SecretAlgorithm,
		client.Trusted,
		client.UserID,
		client.CreatedAt,
	)
	if err != nil {
		return database.ClassifyError(err, "failed to create client")
	}

	for _, redirectURI := range client.RedirectURIs {
		if err := p.createRedirectURI(ctx, querier, &redirectURI); err != nil {
			return err
		}
	}
	return nil
}

// createRedirectURI inserts a single redirect URI row.
func (p *PostgreSQLClientRepository) createRedirectURI(
	ctx context.Context,
	querier database.Querier,
	redirectURI *oauthDomain.RedirectURI,
) error {
	query := `INSERT INTO oauth_redirect_uris (id, oauth_client_id, uri) VALUES ($1, $2, $3)`

	_, err := querier.ExecContext(ctx, query, redirectURI.ID, redirectURI.ClientID, redirectURI.URI)
	if err != nil {
		return database.ClassifyError(err, "failed to create redirect uri")
	}
	return nil
}

// Update modifies the mutable fields (name, trusted) of an existing Client.
func (p *PostgreSQLClientRepository) Update(ctx context.Context, client *oauthDomain.Client) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE oauth_clients SET name = $1, trusted = $2 WHERE id = $3`

	_, err := querier.ExecContext(ctx, query, client.Name, client.Trusted, client.ID)
	if err != nil {
		return database.ClassifyError(err, "failed to update client")
	}
	return nil
}

// UpdateSecret persists a newly hashed client secret with its salt and algorithm.
// Used both for explicit secret rotation and for migration-on-verify.
func (p *PostgreSQLClientRepository) UpdateSecret(
	ctx context.Context,
	clientID uuid.UUID,
	secretHash, secretSalt, secretAlgorithm string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE oauth_clients
			  SET secret_hash = $1, secret_salt = $2, secret_algorithm = $3
			  WHERE id = $4`

	_, err := querier.ExecContext(ctx, query, secretHash, secretSalt, secretAlgorithm, clientID)
	if err != nil {
		return database.ClassifyError(err, "failed to update client secret")
	}
	return nil
}

// Get retrieves a Client by ID. The redirect URI association is not loaded;
// use ListRedirectURIs. Returns ErrClientNotFound if the client doesn't exist.
func (p *PostgreSQLClientRepository) Get(
	ctx context.Context,
	clientID uuid.UUID,
) (*oauthDomain.Client, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, secret_hash, secret_salt, secret_algorithm, trusted, user_id, created_at
			  FROM oauth_clients WHERE id = $1`

	var client oauthDomain.Client

	err := querier.QueryRowContext(ctx, query, clientID).Scan(
		&client.ID,
		&client.Name,
		&client.SecretHash,
		&client.SecretSalt,
		&client.SecretAlgorithm,
		&client.Trusted,
		&client.UserID,
		&client.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrClientNotFound
		}
		return nil, database.ClassifyError(err, "failed to get client")
	}

	return &client, nil
}

// ListRedirectURIs retrieves all redirect URIs registered to the client.
// Returns an empty slice when none are registered.
func (p *PostgreSQLClientRepository) ListRedirectURIs(
	ctx context.Context,
	clientID uuid.UUID,
) ([]oauthDomain.RedirectURI, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, oauth_client_id, uri FROM oauth_redirect_uris WHERE oauth_client_id = $1`

	rows, err := querier.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, database.ClassifyError(err, "failed to list redirect uris")
	}
	defer rows.Close()

	redirectURIs := []oauthDomain.RedirectURI{}
	for rows.Next() {
		var redirectURI oauthDomain.RedirectURI
		if err := rows.Scan(&redirectURI.ID, &redirectURI.ClientID, &redirectURI.URI); err != nil {
			return nil, database.ClassifyError(err, "failed to scan redirect uri")
		}
		redirectURIs = append(redirectURIs, redirectURI)
	}
	if err := rows.Err(); err != nil {
		return nil, database.ClassifyError(err, "failed to list redirect uris")
	}

	return redirectURIs, nil
}

// Delete removes a Client. Redirect URIs, codes, and access tokens cascade
// through foreign key constraints.
func (p *PostgreSQLClientRepository) Delete(ctx context.Context, clientID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM oauth_clients WHERE id = $1`

	_, err := querier.ExecContext(ctx, query, clientID)
	if err != nil {
		return database.ClassifyError(err, "failed to delete client")
	}
	return nil
}

// NewPostgreSQLClientRepository creates a new PostgreSQL Client repository.
func NewPostgreSQLClientRepository(db *sql.DB) *PostgreSQLClientRepository {
	return &PostgreSQLClientRepository{db: db}
}
