// Package usecase implements business logic orchestration for the OAuth2
// authorization flow.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tyratox/lazuli-auth/internal/config"
	"github.com/tyratox/lazuli-auth/internal/database"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
	oauthService "github.com/tyratox/lazuli-auth/internal/oauth/service"
)

// clientUseCase implements ClientUseCase for managing OAuth clients.
type clientUseCase struct {
	config     *config.Config
	logger     *slog.Logger
	txManager  database.TxManager
	clientRepo ClientRepository
	hasher     oauthService.HasherService
	generator  oauthService.GeneratorService
}

// Create generates and persists a new Client with a random secret.
// The plain secret is only returned once and must be securely stored by the
// caller; the database holds its salted hash.
func (c *clientUseCase) Create(
	ctx context.Context,
	createClientInput *oauthDomain.CreateClientInput,
) (*oauthDomain.CreateClientOutput, error) {
	plainSecret, err := c.generator.RandomString(c.config.TokenLength)
	if err != nil {
		return nil, err
	}

	hashed, err := c.hasher.Hash(plainSecret)
	if err != nil {
		return nil, err
	}

	clientID := uuid.Must(uuid.NewV7())
	client := &oauthDomain.Client{
		ID:              clientID,
		Name:            createClientInput.Name,
		SecretHash:      hashed.Hash,
		SecretSalt:      hashed.Salt,
		SecretAlgorithm: hashed.Algorithm,
		Trusted:         createClientInput.Trusted,
		UserID:          createClientInput.UserID,
		CreatedAt:       time.Now().UTC(),
	}
	for _, uri := range createClientInput.RedirectURIs {
		client.RedirectURIs = append(client.RedirectURIs, oauthDomain.RedirectURI{
			ID:       uuid.Must(uuid.NewV7()),
			ClientID: clientID,
			URI:      uri,
		})
	}

	// Client and redirect URI rows must appear together
	if err := c.txManager.WithTx(ctx, func(ctx context.Context) error {
		return c.clientRepo.Create(ctx, client)
	}); err != nil {
		return nil, err
	}

	return &oauthDomain.CreateClientOutput{
		ID:          client.ID,
		PlainSecret: plainSecret,
	}, nil
}

// Update modifies a client's name and trusted flag.
func (c *clientUseCase) Update(
	ctx context.Context,
	clientID uuid.UUID,
	updateClientInput *oauthDomain.UpdateClientInput,
) error {
	client, err := c.clientRepo.Get(ctx, clientID)
	if err != nil {
		return err
	}

	client.Name = updateClientInput.Name
	client.Trusted = updateClientInput.Trusted

	return c.clientRepo.Update(ctx, client)
}

// Get retrieves a client by ID with its redirect URIs loaded.
func (c *clientUseCase) Get(ctx context.Context, clientID uuid.UUID) (*oauthDomain.Client, error) {
	client, err := c.clientRepo.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	uris, err := c.clientRepo.ListRedirectURIs(ctx, clientID)
	if err != nil {
		return nil, err
	}
	client.RedirectURIs = uris

	return client, nil
}

// RotateSecret replaces the client's secret with a freshly generated one.
// Returns the new plain secret; it is never retrievable again.
func (c *clientUseCase) RotateSecret(ctx context.Context, clientID uuid.UUID) (string, error) {
	if _, err := c.clientRepo.Get(ctx, clientID); err != nil {
		return "", err
	}

	plainSecret, err := c.generator.RandomString(c.config.TokenLength)
	if err != nil {
		return "", err
	}

	hashed, err := c.hasher.Hash(plainSecret)
	if err != nil {
		return "", err
	}

	if err := c.clientRepo.UpdateSecret(ctx, clientID, hashed.Hash, hashed.Salt, hashed.Algorithm); err != nil {
		return "", err
	}

	return plainSecret, nil
}

// Authenticate verifies a client id and secret pair.
//
// Unknown clients and wrong secrets both return ErrInvalidClient to prevent
// client enumeration. Secrets stored under an outdated algorithm are
// re-hashed under the current default with the stored salt kept, so the
// plaintext survives algorithm upgrades without rotation.
func (c *clientUseCase) Authenticate(
	ctx context.Context,
	clientID uuid.UUID,
	plainSecret string,
) (*oauthDomain.Client, error) {
	client, err := retryTransient(ctx, func(ctx context.Context) (*oauthDomain.Client, error) {
		return c.clientRepo.Get(ctx, clientID)
	})
	if err != nil {
		if errors.Is(err, oauthDomain.ErrClientNotFound) {
			return nil, oauthDomain.ErrInvalidClient
		}
		return nil, err
	}

	recomputed, err := c.hasher.HashWith(plainSecret, client.SecretSalt, client.SecretAlgorithm)
	if err != nil {
		return nil, err
	}
	if !c.hasher.Compare(recomputed.Hash, client.SecretHash) {
		return nil, oauthDomain.ErrInvalidClient
	}

	// Migration-on-verify: upgrade the stored hash to the current default
	// algorithm. The verified secret still authenticates if this fails.
	if client.SecretAlgorithm != c.hasher.DefaultAlgorithm() {
		upgraded, err := c.hasher.HashWith(plainSecret, client.SecretSalt, c.hasher.DefaultAlgorithm())
		if err == nil {
			err = c.clientRepo.UpdateSecret(ctx, client.ID, upgraded.Hash, upgraded.Salt, upgraded.Algorithm)
		}
		if err != nil {
			c.logger.Warn("failed to upgrade client secret hash",
				slog.String("client_id", client.ID.String()),
				slog.Any("error", err),
			)
		} else {
			client.SecretHash = upgraded.Hash
			client.SecretAlgorithm = upgraded.Algorithm
		}
	}

	return client, nil
}

// VerifyRedirectURI checks uri against the client's registered redirect URIs,
// loading the association if the caller hasn't. Matching is byte-exact.
func (c *clientUseCase) VerifyRedirectURI(
	ctx context.Context,
	client *oauthDomain.Client,
	uri string,
) error {
	if client.RedirectURIs == nil {
		uris, err := retryTransient(ctx, func(ctx context.Context) ([]oauthDomain.RedirectURI, error) {
			return c.clientRepo.ListRedirectURIs(ctx, client.ID)
		})
		if err != nil {
			return err
		}
		client.RedirectURIs = uris
	}

	if !client.HasRedirectURI(uri) {
		return oauthDomain.ErrInvalidRedirectURI
	}
	return nil
}

// Delete removes a client. Codes, tokens, and redirect URIs cascade.
func (c *clientUseCase) Delete(ctx context.Context, clientID uuid.UUID) error {
	if _, err := c.clientRepo.Get(ctx, clientID); err != nil {
		return err
	}
	return c.clientRepo.Delete(ctx, clientID)
}

// NewClientUseCase creates a new ClientUseCase with the provided dependencies.
func NewClientUseCase(
	cfg *config.Config,
	logger *slog.Logger,
	txManager database.TxManager,
	clientRepo ClientRepository,
	hasher oauthService.HasherService,
	generator oauthService.GeneratorService,
) ClientUseCase {
	return &clientUseCase{
		config:     cfg,
		logger:     logger,
		txManager:  txManager,
		clientRepo: clientRepo,
		hasher:     hasher,
		generator:  generator,
	}
}
