package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
	"github.com/tyratox/lazuli-auth/internal/httputil"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
	"github.com/tyratox/lazuli-auth/internal/oauth/http/dto"
	oauthUseCase "github.com/tyratox/lazuli-auth/internal/oauth/usecase"
	customValidation "github.com/tyratox/lazuli-auth/internal/validation"
)

// AuthorizeHandler handles the authorization endpoint and the consent
// decision round-trip. Both routes require bearer authentication: the
// resource owner must be logged in before a client can ask for a code.
type AuthorizeHandler struct {
	clientUseCase    oauthUseCase.ClientUseCase
	authorizeUseCase oauthUseCase.AuthorizeUseCase
	logger           *slog.Logger
}

// NewAuthorizeHandler creates a new authorize handler with required dependencies.
func NewAuthorizeHandler(
	clientUseCase oauthUseCase.ClientUseCase,
	authorizeUseCase oauthUseCase.AuthorizeUseCase,
	logger *slog.Logger,
) *AuthorizeHandler {
	return &AuthorizeHandler{
		clientUseCase:    clientUseCase,
		authorizeUseCase: authorizeUseCase,
		logger:           logger,
	}
}

// AuthorizeHandler starts the authorization-code flow.
// GET /v1/oauth/authorize - Requires bearer authentication.
//
// The client and redirect URI are verified before anything is sent to the
// redirect target; failures at that stage are answered directly, never
// redirected (an unverified URI must not receive protocol errors).
// When consent is not needed the user agent is redirected with a fresh code;
// otherwise the response carries a consent transaction for the decision step.
func (h *AuthorizeHandler) AuthorizeHandler(c *gin.Context) {
	var req dto.AuthorizeRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleOAuthErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		httputil.HandleOAuthErrorGin(c, oauthDomain.ErrInvalidClient, h.logger)
		return
	}

	client, err := h.clientUseCase.Get(c.Request.Context(), clientID)
	if err != nil {
		if apperrors.Is(err, oauthDomain.ErrClientNotFound) {
			err = oauthDomain.ErrInvalidClient
		}
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	if err := h.clientUseCase.VerifyRedirectURI(c.Request.Context(), client, req.RedirectURI); err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	scopes := oauthDomain.ParseScope(req.Scope)

	needsConsent, err := h.authorizeUseCase.NeedsConsent(c.Request.Context(), client, user.ID, scopes)
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	if needsConsent {
		transactionID, err := h.authorizeUseCase.BeginConsent(client, user.ID, req.RedirectURI, scopes)
		if err != nil {
			httputil.HandleOAuthErrorGin(c, err, h.logger)
			return
		}

		c.JSON(http.StatusOK, dto.ConsentRequiredResponse{
			ConsentRequired: true,
			TransactionID:   transactionID,
			ClientName:      client.Name,
			Scopes:          scopes,
		})
		return
	}

	output, err := h.authorizeUseCase.IssueCode(c.Request.Context(), &oauthDomain.IssueCodeInput{
		ClientID: client.ID,
		UserID:   user.ID,
		Scopes:   scopes,
	})
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	httputil.RedirectWithCode(c, req.RedirectURI, output.PlainCode, req.State)
}

// DecisionHandler completes a pending consent transaction.
// POST /v1/oauth/decision - Requires bearer authentication.
//
// The transaction must belong to the authenticated user; once consumed it
// cannot be replayed. An approval redirects with a fresh code, a denial
// redirects with error=access_denied.
func (h *AuthorizeHandler) DecisionHandler(c *gin.Context) {
	var req dto.DecisionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	transaction, err := h.authorizeUseCase.FinishConsent(req.TransactionID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// The consuming user must be the one the transaction was opened for
	if transaction.UserID != user.ID {
		httputil.HandleErrorGin(c, oauthDomain.ErrInvalidTransaction, h.logger)
		return
	}

	if !req.Approved {
		httputil.RedirectWithError(c, transaction.RedirectURI, "access_denied", req.State)
		return
	}

	output, err := h.authorizeUseCase.IssueCode(c.Request.Context(), &oauthDomain.IssueCodeInput{
		ClientID: transaction.ClientID,
		UserID:   user.ID,
		Scopes:   transaction.Scopes,
	})
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	httputil.RedirectWithCode(c, transaction.RedirectURI, output.PlainCode, req.State)
}
