package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tyratox/lazuli-auth/internal/httputil"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
	"github.com/tyratox/lazuli-auth/internal/oauth/http/dto"
	oauthUseCase "github.com/tyratox/lazuli-auth/internal/oauth/usecase"
	customValidation "github.com/tyratox/lazuli-auth/internal/validation"
)

// TokenHandler handles the token endpoint: client authentication followed by
// the code-for-token exchange.
type TokenHandler struct {
	clientUseCase   oauthUseCase.ClientUseCase
	exchangeUseCase oauthUseCase.ExchangeUseCase
	logger          *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	clientUseCase oauthUseCase.ClientUseCase,
	exchangeUseCase oauthUseCase.ExchangeUseCase,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		clientUseCase:   clientUseCase,
		exchangeUseCase: exchangeUseCase,
		logger:          logger,
	}
}

// TokenHandler exchanges an authorization code for a bearer access token.
// POST /v1/oauth/token - No bearer authentication; the client authenticates
// itself with its id and secret in the form body.
//
// Client credentials also accepted via HTTP Basic auth per RFC 6749 §2.3.1.
// The redirect URI from the authorization step must be presented again and is
// re-verified against the client's registered URIs. All verification
// failures surface as invalid_client or invalid_grant without revealing
// which check failed.
func (h *TokenHandler) TokenHandler(c *gin.Context) {
	var req dto.TokenRequest

	if err := c.ShouldBind(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	// Basic auth takes precedence over form credentials
	if basicID, basicSecret, ok := c.Request.BasicAuth(); ok {
		req.ClientID = basicID
		req.ClientSecret = basicSecret
	}

	if err := req.Validate(); err != nil {
		httputil.HandleOAuthErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		httputil.HandleOAuthErrorGin(c, oauthDomain.ErrInvalidClient, h.logger)
		return
	}

	client, err := h.clientUseCase.Authenticate(c.Request.Context(), clientID, req.ClientSecret)
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	grant, err := h.exchangeUseCase.Exchange(c.Request.Context(), client, req.Code, req.RedirectURI)
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapGrantToTokenResponse(grant, time.Now().UTC()))
}
