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

// tokenIssueAttempts bounds retries when a generated token collides with an
// existing token_hash row.
const tokenIssueAttempts = 3

// exchangeUseCase implements ExchangeUseCase for the token endpoint.
type exchangeUseCase struct {
	config     *config.Config
	logger     *slog.Logger
	txManager  database.TxManager
	clientRepo ClientRepository
	codeRepo   CodeRepository
	tokenRepo  TokenRepository
	scopeRepo  ScopeRepository
	hasher     oauthService.HasherService
	generator  oauthService.GeneratorService
}

// Exchange redeems an authorization code for a bearer access token.
//
// The presented redirect URI must byte-exactly match one registered to the
// client; a mismatch is reported as ErrInvalidGrant like every other binding
// failure, so a caller cannot tell which check rejected it. The code row is
// then claimed with an atomic delete inside the same transaction that creates
// the token, so concurrent exchanges of one code produce exactly one token.
// Codes bound to a different client and already-claimed codes both surface as
// ErrInvalidGrant; expired codes are swept and return ErrExpiredGrant.
func (e *exchangeUseCase) Exchange(
	ctx context.Context,
	client *oauthDomain.Client,
	plainCode string,
	redirectURI string,
) (*oauthDomain.TokenGrant, error) {
	if client.RedirectURIs == nil {
		uris, err := retryTransient(ctx, func(ctx context.Context) ([]oauthDomain.RedirectURI, error) {
			return e.clientRepo.ListRedirectURIs(ctx, client.ID)
		})
		if err != nil {
			return nil, err
		}
		client.RedirectURIs = uris
	}
	if !client.HasRedirectURI(redirectURI) {
		return nil, oauthDomain.ErrInvalidGrant
	}

	code, err := retryTransient(ctx, func(ctx context.Context) (*oauthDomain.Code, error) {
		return e.codeRepo.GetByCodeHash(ctx, e.hasher.LookupHash(plainCode))
	})
	if err != nil {
		if errors.Is(err, oauthDomain.ErrCodeNotFound) {
			return nil, oauthDomain.ErrInvalidGrant
		}
		return nil, err
	}

	if code.ClientID != client.ID {
		return nil, oauthDomain.ErrInvalidGrant
	}

	now := time.Now().UTC()
	if code.Expired(now) {
		// Sweep the client's expired codes, this one included
		if _, err := e.codeRepo.DeleteExpiredByClient(ctx, client.ID, now); err != nil {
			e.logger.Warn("failed to sweep expired authorization codes",
				slog.String("client_id", client.ID.String()),
				slog.Any("error", err),
			)
		}
		return nil, oauthDomain.ErrExpiredGrant
	}

	return e.issueToken(ctx, &client.ID, code.UserID, code.Scopes,
		func(ctx context.Context, _ *oauthDomain.AccessToken) error {
			affected, err := e.codeRepo.Delete(ctx, code.ID)
			if err != nil {
				return err
			}
			if affected == 0 {
				// Another exchange claimed the code first
				return oauthDomain.ErrInvalidGrant
			}
			return nil
		})
}

// IssueUserToken creates a client-less access token for a user, used after a
// successful local login.
func (e *exchangeUseCase) IssueUserToken(
	ctx context.Context,
	userID uuid.UUID,
	scopes []string,
) (*oauthDomain.TokenGrant, error) {
	return e.issueToken(ctx, nil, userID, nil,
		func(ctx context.Context, token *oauthDomain.AccessToken) error {
			resolved, err := e.scopeRepo.Resolve(ctx, scopes)
			if err != nil {
				return err
			}
			token.Scopes = resolved
			return nil
		})
}

// issueToken generates a token and persists it in a transaction together with
// the claim step. A storage failure regenerates the token and retries, which
// also covers the unlikely token_hash collision.
func (e *exchangeUseCase) issueToken(
	ctx context.Context,
	clientID *uuid.UUID,
	userID uuid.UUID,
	scopes []oauthDomain.Scope,
	claim func(ctx context.Context, token *oauthDomain.AccessToken) error,
) (*oauthDomain.TokenGrant, error) {
	var lastErr error
	for attempt := 0; attempt < tokenIssueAttempts; attempt++ {
		plainToken, err := e.generator.HeaderSafeString(2 * e.config.TokenLength)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		token := &oauthDomain.AccessToken{
			ID:        uuid.Must(uuid.NewV7()),
			TokenHash: e.hasher.LookupHash(plainToken),
			ClientID:  clientID,
			UserID:    userID,
			ExpiresAt: now.Add(e.config.AccessTokenLifetime),
			Scopes:    scopes,
			CreatedAt: now,
		}

		err = e.txManager.WithTx(ctx, func(ctx context.Context) error {
			if err := claim(ctx, token); err != nil {
				return err
			}
			return e.tokenRepo.Create(ctx, token)
		})
		if err == nil {
			return &oauthDomain.TokenGrant{PlainToken: plainToken, Token: token}, nil
		}
		if errors.Is(err, oauthDomain.ErrInvalidGrant) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// DeleteExpiredTokens sweeps expired access tokens.
func (e *exchangeUseCase) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	return e.tokenRepo.DeleteExpired(ctx, time.Now().UTC())
}

// NewExchangeUseCase creates a new ExchangeUseCase with the provided dependencies.
func NewExchangeUseCase(
	cfg *config.Config,
	logger *slog.Logger,
	txManager database.TxManager,
	clientRepo ClientRepository,
	codeRepo CodeRepository,
	tokenRepo TokenRepository,
	scopeRepo ScopeRepository,
	hasher oauthService.HasherService,
	generator oauthService.GeneratorService,
) ExchangeUseCase {
	return &exchangeUseCase{
		config:     cfg,
		logger:     logger,
		txManager:  txManager,
		clientRepo: clientRepo,
		codeRepo:   codeRepo,
		tokenRepo:  tokenRepo,
		scopeRepo:  scopeRepo,
		hasher:     hasher,
		generator:  generator,
	}
}
