package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
	"github.com/tyratox/lazuli-auth/internal/httputil"
	oauthUseCase "github.com/tyratox/lazuli-auth/internal/oauth/usecase"
)

// extractBearerToken pulls the plain token out of the Authorization header.
// The "bearer" prefix is matched case-insensitively. Returns "" when the
// header is missing or malformed.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	const bearerPrefix = "bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}

	return authHeader[len(bearerPrefix):]
}

// BearerMiddleware authenticates requests via a bearer access token.
//
// The token is validated with BearerUseCase.Validate, which also slides the
// token's expiry window forward, then the user and token are stored in the
// request context for handlers to pick up via GetUser/GetToken.
//
// requiredPermissions are enforced during validation: a valid token whose
// user lacks one of them is rejected with 403, everything else invalid with
// 401.
func BearerMiddleware(
	bearerUseCase oauthUseCase.BearerUseCase,
	logger *slog.Logger,
	requiredPermissions ...string,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		plainToken := extractBearerToken(c)
		if plainToken == "" {
			logger.Debug("bearer authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		user, token, err := bearerUseCase.Validate(c.Request.Context(), plainToken, requiredPermissions)
		if err != nil {
			logger.Debug("bearer authentication failed", slog.Any("error", err))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithUser(c.Request.Context(), user)
		ctx = WithToken(ctx, token)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// SoftBearerMiddleware is BearerMiddleware for optionally-authenticated
// routes: an invalid or absent token never aborts the request, it just leaves
// the context without a user.
func SoftBearerMiddleware(bearerUseCase oauthUseCase.BearerUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		plainToken := extractBearerToken(c)
		if plainToken == "" {
			c.Next()
			return
		}

		user, token := bearerUseCase.ValidateSoft(c.Request.Context(), plainToken)
		if user != nil {
			ctx := WithUser(c.Request.Context(), user)
			ctx = WithToken(ctx, token)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}
