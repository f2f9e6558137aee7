package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/tyratox/lazuli-auth/internal/database"
	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// MySQLClientRepository implements Client persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLClientRepository struct {
	db *sql.DB
}

// marshalUUID converts a UUID to its BINARY(16) representation.
func marshalUUID(id uuid.UUID) ([]byte, error) {
	b, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal uuid")
	}
	return b, nil
}

// Create inserts a new Client and its redirect URIs into the MySQL database.
func (m *MySQLClientRepository) Create(ctx context.Context, client *oauthDomain.Client) error {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(client.ID)
	if err != nil {
		return err
	}
	userID, err := marshalUUID(client.UserID)
	if err != nil {
		return err
	}

	query := `INSERT INTO oauth_clients
			  (id, name, secret_hash, secret_salt, secret_algorithm, trusted, user_id, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		client.Name,
		client.SecretHash,
		client.SecretSalt,
		client.SecretAlgorithm,
		client.Trusted,
		userID,
		client.CreatedAt,
	)
	if err != nil {
		return database.ClassifyError(err, "failed to create client")
	}

	join := `INSERT INTO oauth_redirect_uris (id, oauth_client_id, uri) VALUES (?, ?, ?)`
	for _, redirectURI := range client.RedirectURIs {
		uriID, err := marshalUUID(redirectURI.ID)
		if err != nil {
			return err
		}
		if _, err := querier.ExecContext(ctx, join, uriID, id, redirectURI.URI); err != nil {
			return database.ClassifyError(err, "failed to create redirect uri")
		}
	}
	return nil
}

// Update modifies the mutable fields (name, trusted) of an existing Client.
func (m *MySQLClientRepository) Update(ctx context.Context, client *oauthDomain.Client) error {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(client.ID)
	if err != nil {
		return err
	}

	query := `UPDATE oauth_clients SET name = ?, trusted = ? WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, client.Name, client.Trusted, id)
	if err != nil {
		return database.ClassifyError(err, "failed to update client")
	}
	return nil
}

// UpdateSecret persists a newly hashed client secret with its salt and algorithm.
func (m *MySQLClientRepository) UpdateSecret(
	ctx context.Context,
	clientID uuid.UUID,
	secretHash, secretSalt, secretAlgorithm string,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(clientID)
	if err != nil {
		return err
	}

	query := `UPDATE oauth_clients
			  SET secret_hash = ?, secret_salt = ?, secret_algorithm = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, secretHash, secretSalt, secretAlgorithm, id)
	if err != nil {
		return database.ClassifyError(err, "failed to update client secret")
	}
	return nil
}

// Get retrieves a Client by ID. The redirect URI association is not loaded;
// use ListRedirectURIs. Returns ErrClientNotFound if the client doesn't exist.
func (m *MySQLClientRepository) Get(
	ctx context.Context,
	clientID uuid.UUID,
) (*oauthDomain.Client, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(clientID)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, name, secret_hash, secret_salt, secret_algorithm, trusted, user_id, created_at
			  FROM oauth_clients WHERE id = ?`

	var client oauthDomain.Client
	var rawID, rawUserID []byte

	err = querier.QueryRowContext(ctx, query, id).Scan(
		&rawID,
		&client.Name,
		&client.SecretHash,
		&client.SecretSalt,
		&client.SecretAlgorithm,
		&client.Trusted,
		&rawUserID,
		&client.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrClientNotFound
		}
		return nil, database.ClassifyError(err, "failed to get client")
	}

	if err := client.ID.UnmarshalBinary(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client id")
	}
	if err := client.UserID.UnmarshalBinary(rawUserID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	return &client, nil
}

// ListRedirectURIs retrieves all redirect URIs registered to the client.
func (m *MySQLClientRepository) ListRedirectURIs(
	ctx context.Context,
	clientID uuid.UUID,
) ([]oauthDomain.RedirectURI, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(clientID)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, oauth_client_id, uri FROM oauth_redirect_uris WHERE oauth_client_id = ?`

	rows, err := querier.QueryContext(ctx, query, id)
	if err != nil {
		return nil, database.ClassifyError(err, "failed to list redirect uris")
	}
	defer rows.Close()

	redirectURIs := []oauthDomain.RedirectURI{}
	for rows.Next() {
		var redirectURI oauthDomain.RedirectURI
		var rawID, rawClientID []byte
		if err := rows.Scan(&rawID, &rawClientID, &redirectURI.URI); err != nil {
			return nil, database.ClassifyError(err, "failed to scan redirect uri")
		}
		if err := redirectURI.ID.UnmarshalBinary(rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal redirect uri id")
		}
		if err := redirectURI.ClientID.UnmarshalBinary(rawClientID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal client id")
		}
		redirectURIs = append(redirectURIs, redirectURI)
	}
	if err := rows.Err(); err != nil {
		return nil, database.ClassifyError(err, "failed to list redirect uris")
	}

	return redirectURIs, nil
}

// Delete removes a Client. Child rows cascade through foreign key constraints.
func (m *MySQLClientRepository) Delete(ctx context.Context, clientID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := marshalUUID(clientID)
	if err != nil {
		return err
	}

	query := `DELETE FROM oauth_clients WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, id)
	if err != nil {
		return database.ClassifyError(err, "failed to delete client")
	}
	return nil
}

// NewMySQLClientRepository creates a new MySQL Client repository.
func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{db: db}
}
