package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	"github.com/tyratox/lazuli-auth/internal/metrics"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// record emits the operation counter and duration histogram for one call.
func record(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RecordOperation(ctx, "oauth", operation, status)
	m.RecordDuration(ctx, "oauth", operation, time.Since(start), status)
}

// clientUseCaseWithMetrics decorates ClientUseCase with metrics instrumentation.
type clientUseCaseWithMetrics struct {
	next    ClientUseCase
	metrics metrics.BusinessMetrics
}

// NewClientUseCaseWithMetrics wraps a ClientUseCase with metrics recording.
func NewClientUseCaseWithMetrics(useCase ClientUseCase, m metrics.BusinessMetrics) ClientUseCase {
	return &clientUseCaseWithMetrics{next: useCase, metrics: m}
}

func (c *clientUseCaseWithMetrics) Create(
	ctx context.Context,
	createClientInput *oauthDomain.CreateClientInput,
) (*oauthDomain.CreateClientOutput, error) {
	start := time.Now()
	output, err := c.next.Create(ctx, createClientInput)
	record(ctx, c.metrics, "client_create", start, err)
	return output, err
}

func (c *clientUseCaseWithMetrics) Update(
	ctx context.Context,
	clientID uuid.UUID,
	updateClientInput *oauthDomain.UpdateClientInput,
) error {
	start := time.Now()
	err := c.next.Update(ctx, clientID, updateClientInput)
	record(ctx, c.metrics, "client_update", start, err)
	return err
}

func (c *clientUseCaseWithMetrics) Get(ctx context.Context, clientID uuid.UUID) (*oauthDomain.Client, error) {
	start := time.Now()
	client, err := c.next.Get(ctx, clientID)
	record(ctx, c.metrics, "client_get", start, err)
	return client, err
}

func (c *clientUseCaseWithMetrics) RotateSecret(ctx context.Context, clientID uuid.UUID) (string, error) {
	start := time.Now()
	plainSecret, err := c.next.RotateSecret(ctx, clientID)
	record(ctx, c.metrics, "client_rotate_secret", start, err)
	return plainSecret, err
}

func (c *clientUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	clientID uuid.UUID,
	plainSecret string,
) (*oauthDomain.Client, error) {
	start := time.Now()
	client, err := c.next.Authenticate(ctx, clientID, plainSecret)
	record(ctx, c.metrics, "client_authenticate", start, err)
	return client, err
}

func (c *clientUseCaseWithMetrics) VerifyRedirectURI(
	ctx context.Context,
	client *oauthDomain.Client,
	uri string,
) error {
	start := time.Now()
	err := c.next.VerifyRedirectURI(ctx, client, uri)
	record(ctx, c.metrics, "client_verify_redirect_uri", start, err)
	return err
}

func (c *clientUseCaseWithMetrics) Delete(ctx context.Context, clientID uuid.UUID) error {
	start := time.Now()
	err := c.next.Delete(ctx, clientID)
	record(ctx, c.metrics, "client_delete", start, err)
	return err
}

// authorizeUseCaseWithMetrics decorates AuthorizeUseCase with metrics instrumentation.
type authorizeUseCaseWithMetrics struct {
	next    AuthorizeUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthorizeUseCaseWithMetrics wraps an AuthorizeUseCase with metrics recording.
func NewAuthorizeUseCaseWithMetrics(useCase AuthorizeUseCase, m metrics.BusinessMetrics) AuthorizeUseCase {
	return &authorizeUseCaseWithMetrics{next: useCase, metrics: m}
}

func (a *authorizeUseCaseWithMetrics) NeedsConsent(
	ctx context.Context,
	client *oauthDomain.Client,
	userID uuid.UUID,
	requestedScopes []string,
) (bool, error) {
	start := time.Now()
	needed, err := a.next.NeedsConsent(ctx, client, userID, requestedScopes)
	record(ctx, a.metrics, "needs_consent", start, err)
	return needed, err
}

func (a *authorizeUseCaseWithMetrics) BeginConsent(
	client *oauthDomain.Client,
	userID uuid.UUID,
	redirectURI string,
	scopes []string,
) (string, error) {
	return a.next.BeginConsent(client, userID, redirectURI, scopes)
}

func (a *authorizeUseCaseWithMetrics) FinishConsent(transactionID string) (*oauthDomain.ConsentTransaction, error) {
	return a.next.FinishConsent(transactionID)
}

func (a *authorizeUseCaseWithMetrics) IssueCode(
	ctx context.Context,
	issueCodeInput *oauthDomain.IssueCodeInput,
) (*oauthDomain.IssueCodeOutput, error) {
	start := time.Now()
	output, err := a.next.IssueCode(ctx, issueCodeInput)
	record(ctx, a.metrics, "issue_code", start, err)
	return output, err
}

func (a *authorizeUseCaseWithMetrics) DeleteExpiredCodes(ctx context.Context) (int64, error) {
	start := time.Now()
	affected, err := a.next.DeleteExpiredCodes(ctx)
	record(ctx, a.metrics, "delete_expired_codes", start, err)
	return affected, err
}

// exchangeUseCaseWithMetrics decorates ExchangeUseCase with metrics instrumentation.
type exchangeUseCaseWithMetrics struct {
	next    ExchangeUseCase
	metrics metrics.BusinessMetrics
}

// NewExchangeUseCaseWithMetrics wraps an ExchangeUseCase with metrics recording.
func NewExchangeUseCaseWithMetrics(useCase ExchangeUseCase, m metrics.BusinessMetrics) ExchangeUseCase {
	return &exchangeUseCaseWithMetrics{next: useCase, metrics: m}
}

func (e *exchangeUseCaseWithMetrics) Exchange(
	ctx context.Context,
	client *oauthDomain.Client,
	plainCode string,
	redirectURI string,
) (*oauthDomain.TokenGrant, error) {
	start := time.Now()
	grant, err := e.next.Exchange(ctx, client, plainCode, redirectURI)
	record(ctx, e.metrics, "exchange", start, err)
	return grant, err
}

func (e *exchangeUseCaseWithMetrics) IssueUserToken(
	ctx context.Context,
	userID uuid.UUID,
	scopes []string,
) (*oauthDomain.TokenGrant, error) {
	start := time.Now()
	grant, err := e.next.IssueUserToken(ctx, userID, scopes)
	record(ctx, e.metrics, "issue_user_token", start, err)
	return grant, err
}

func (e *exchangeUseCaseWithMetrics) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	start := time.Now()
	affected, err := e.next.DeleteExpiredTokens(ctx)
	record(ctx, e.metrics, "delete_expired_tokens", start, err)
	return affected, err
}

// bearerUseCaseWithMetrics decorates BearerUseCase with metrics instrumentation.
type bearerUseCaseWithMetrics struct {
	next    BearerUseCase
	metrics metrics.BusinessMetrics
}

// NewBearerUseCaseWithMetrics wraps a BearerUseCase with metrics recording.
func NewBearerUseCaseWithMetrics(useCase BearerUseCase, m metrics.BusinessMetrics) BearerUseCase {
	return &bearerUseCaseWithMetrics{next: useCase, metrics: m}
}

func (b *bearerUseCaseWithMetrics) Validate(
	ctx context.Context,
	plainToken string,
	requiredPermissions []string,
) (*identityDomain.User, *oauthDomain.AccessToken, error) {
	start := time.Now()
	user, token, err := b.next.Validate(ctx, plainToken, requiredPermissions)
	record(ctx, b.metrics, "bearer_validate", start, err)
	return user, token, err
}

func (b *bearerUseCaseWithMetrics) ValidateSoft(
	ctx context.Context,
	plainToken string,
) (*identityDomain.User, *oauthDomain.AccessToken) {
	start := time.Now()
	user, token := b.next.ValidateSoft(ctx, plainToken)
	record(ctx, b.metrics, "bearer_validate_soft", start, nil)
	return user, token
}
