package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tyratox/lazuli-auth/internal/config"
	"github.com/tyratox/lazuli-auth/internal/database"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
	oauthService "github.com/tyratox/lazuli-auth/internal/oauth/service"
)

// authorizeUseCase implements AuthorizeUseCase for the authorization endpoint.
type authorizeUseCase struct {
	config       *config.Config
	txManager    database.TxManager
	codeRepo     CodeRepository
	tokenRepo    TokenRepository
	scopeRepo    ScopeRepository
	hasher       oauthService.HasherService
	generator    oauthService.GeneratorService
	consentStore oauthService.ConsentTransactionStore
}

// NeedsConsent reports whether the consent screen must be shown.
//
// Trusted clients bypass consent entirely. For everyone else, consent is
// silently re-approved when the union of scopes on the user's live tokens
// for this client covers every requested scope; any new scope forces the
// screen again.
func (a *authorizeUseCase) NeedsConsent(
	ctx context.Context,
	client *oauthDomain.Client,
	userID uuid.UUID,
	requestedScopes []string,
) (bool, error) {
	if client.Trusted {
		return false, nil
	}

	granted, err := retryTransient(ctx, func(ctx context.Context) ([]string, error) {
		return a.tokenRepo.ListScopeNamesForUserClient(ctx, userID, client.ID, time.Now().UTC())
	})
	if err != nil {
		return false, err
	}

	return !oauthDomain.ScopesCover(granted, requestedScopes), nil
}

// BeginConsent stores a pending consent transaction and returns its ID.
func (a *authorizeUseCase) BeginConsent(
	client *oauthDomain.Client,
	userID uuid.UUID,
	redirectURI string,
	scopes []string,
) (string, error) {
	return a.consentStore.Create(&oauthDomain.ConsentTransaction{
		ClientID:    client.ID,
		UserID:      userID,
		RedirectURI: redirectURI,
		Scopes:      scopes,
		ExpiresAt:   time.Now().UTC().Add(a.config.ConsentTransactionLifetime),
	})
}

// FinishConsent redeems a single-use consent transaction.
func (a *authorizeUseCase) FinishConsent(transactionID string) (*oauthDomain.ConsentTransaction, error) {
	return a.consentStore.Consume(transactionID)
}

// IssueCode creates a short-lived authorization code.
//
// The plain code only ever exists in the redirect query string; the stored
// row carries an unsalted lookup hash. The code is generated header-safe at
// twice the configured base length to compensate for the reduced alphabet.
func (a *authorizeUseCase) IssueCode(
	ctx context.Context,
	issueCodeInput *oauthDomain.IssueCodeInput,
) (*oauthDomain.IssueCodeOutput, error) {
	plainCode, err := a.generator.HeaderSafeString(2 * a.config.TokenLength)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().UTC().Add(a.config.AuthCodeLifetime)
	code := &oauthDomain.Code{
		ID:        uuid.Must(uuid.NewV7()),
		CodeHash:  a.hasher.LookupHash(plainCode),
		ClientID:  issueCodeInput.ClientID,
		UserID:    issueCodeInput.UserID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}

	// Scope resolution and the code insert must commit together
	if err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		scopes, err := a.scopeRepo.Resolve(ctx, issueCodeInput.Scopes)
		if err != nil {
			return err
		}
		code.Scopes = scopes
		return a.codeRepo.Create(ctx, code)
	}); err != nil {
		return nil, err
	}

	return &oauthDomain.IssueCodeOutput{
		PlainCode: plainCode,
		ExpiresAt: expiresAt,
	}, nil
}

// DeleteExpiredCodes sweeps expired authorization codes.
func (a *authorizeUseCase) DeleteExpiredCodes(ctx context.Context) (int64, error) {
	return a.codeRepo.DeleteExpired(ctx, time.Now().UTC())
}

// NewAuthorizeUseCase creates a new AuthorizeUseCase with the provided dependencies.
func NewAuthorizeUseCase(
	cfg *config.Config,
	txManager database.TxManager,
	codeRepo CodeRepository,
	tokenRepo TokenRepository,
	scopeRepo ScopeRepository,
	hasher oauthService.HasherService,
	generator oauthService.GeneratorService,
	consentStore oauthService.ConsentTransactionStore,
) AuthorizeUseCase {
	return &authorizeUseCase{
		config:       cfg,
		txManager:    txManager,
		codeRepo:     codeRepo,
		tokenRepo:    tokenRepo,
		scopeRepo:    scopeRepo,
		hasher:       hasher,
		generator:    generator,
		consentStore: consentStore,
	}
}
