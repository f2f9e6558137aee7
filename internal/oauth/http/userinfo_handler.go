package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
	"github.com/tyratox/lazuli-auth/internal/httputil"
	"github.com/tyratox/lazuli-auth/internal/oauth/http/dto"
)

// UserinfoHandler returns the user behind a validated bearer token.
type UserinfoHandler struct {
	logger *slog.Logger
}

// NewUserinfoHandler creates a new userinfo handler.
func NewUserinfoHandler(logger *slog.Logger) *UserinfoHandler {
	return &UserinfoHandler{logger: logger}
}

// UserinfoHandler returns the authenticated user's profile.
// GET /v1/userinfo - Requires bearer authentication.
func (h *UserinfoHandler) UserinfoHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		// Should never happen behind the bearer middleware
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	token, _ := GetToken(c.Request.Context())

	c.JSON(http.StatusOK, dto.MapUserToUserinfoResponse(user, token))
}
