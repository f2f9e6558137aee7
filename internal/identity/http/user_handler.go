// Package http provides HTTP handlers for user registration and local login.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
	"github.com/tyratox/lazuli-auth/internal/httputil"
	"github.com/tyratox/lazuli-auth/internal/identity/http/dto"
	"github.com/tyratox/lazuli-auth/internal/identity/strategy"
	identityUseCase "github.com/tyratox/lazuli-auth/internal/identity/usecase"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
	oauthHTTP "github.com/tyratox/lazuli-auth/internal/oauth/http"
	oauthDto "github.com/tyratox/lazuli-auth/internal/oauth/http/dto"
	oauthUseCase "github.com/tyratox/lazuli-auth/internal/oauth/usecase"
	customValidation "github.com/tyratox/lazuli-auth/internal/validation"
)

// UserHandler handles user registration, local password login, and account
// deletion. Login goes through the local password authentication strategy
// and issues a clientless bearer token, so the handler also depends on the
// token exchange use case.
type UserHandler struct {
	userUseCase      identityUseCase.UserUseCase
	passwordStrategy strategy.Strategy
	exchangeUseCase  oauthUseCase.ExchangeUseCase
	logger           *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(
	userUseCase identityUseCase.UserUseCase,
	passwordStrategy strategy.Strategy,
	exchangeUseCase oauthUseCase.ExchangeUseCase,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		userUseCase:      userUseCase,
		passwordStrategy: passwordStrategy,
		exchangeUseCase:  exchangeUseCase,
		logger:           logger,
	}
}

// RegisterHandler creates a new user account.
// POST /v1/users - No authentication required.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.Register(c.Request.Context(), identityUseCase.RegisterUserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Permissions: req.Permissions,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// LoginHandler authenticates an email and password pair and issues a bearer
// token bound to the user alone, not to any client.
// POST /v1/login - No authentication required.
func (h *UserHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.passwordStrategy.Authenticate(c.Request.Context(), strategy.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	grant, err := h.exchangeUseCase.IssueUserToken(c.Request.Context(), user.ID, oauthDomain.ParseScope(req.Scope))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, oauthDto.MapGrantToTokenResponse(grant, time.Now().UTC()))
}

// DeleteMeHandler removes the authenticated user's account. Owned clients,
// authorization codes, and tokens cascade with it.
// DELETE /v1/users/me - Requires bearer authentication.
func (h *UserHandler) DeleteMeHandler(c *gin.Context) {
	user, ok := oauthHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.userUseCase.Delete(c.Request.Context(), user.ID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
