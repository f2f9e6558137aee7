// Package httputil maps domain errors to HTTP and OAuth2 wire responses.
package httputil

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// OAuthErrorResponse is the RFC 6749 error shape returned by the token and
// authorize endpoints.
type OAuthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// HandleErrorGin maps domain errors to HTTP status codes and writes a JSON
// response. Unknown errors become opaque 500s; details go to the log only.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var errorResponse ErrorResponse

	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		errorResponse = ErrorResponse{
			Error:   "not_found",
			Message: "The requested resource was not found",
		}

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusConflict
		errorResponse = ErrorResponse{
			Error:   "conflict",
			Message: "A conflict occurred with existing data",
		}

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		errorResponse = ErrorResponse{
			Error:   "invalid_input",
			Message: err.Error(),
		}

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errorResponse = ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication is required",
		}

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		errorResponse = ErrorResponse{
			Error:   "forbidden",
			Message: "You don't have permission to access this resource",
		}

	default:
		statusCode = http.StatusInternalServerError
		errorResponse = ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		}
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, errorResponse)
}

// HandleOAuthErrorGin maps domain errors to RFC 6749 error codes for the
// token endpoint. Unknown clients and wrong secrets share "invalid_client";
// unknown, claimed, and expired codes share "invalid_grant", so a caller
// cannot probe which check failed.
func HandleOAuthErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var errorResponse OAuthErrorResponse

	switch {
	case apperrors.Is(err, oauthDomain.ErrInvalidClient):
		statusCode = http.StatusUnauthorized
		errorResponse = OAuthErrorResponse{
			Error:            "invalid_client",
			ErrorDescription: "Client authentication failed",
		}

	case apperrors.Is(err, oauthDomain.ErrInvalidGrant), apperrors.Is(err, oauthDomain.ErrExpiredGrant):
		statusCode = http.StatusBadRequest
		errorResponse = OAuthErrorResponse{
			Error:            "invalid_grant",
			ErrorDescription: "The authorization code is invalid or expired",
		}

	case apperrors.Is(err, oauthDomain.ErrInvalidRedirectURI):
		statusCode = http.StatusBadRequest
		errorResponse = OAuthErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "The redirect URI is not registered for this client",
		}

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errorResponse = OAuthErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: err.Error(),
		}

	default:
		statusCode = http.StatusInternalServerError
		errorResponse = OAuthErrorResponse{
			Error: "server_error",
		}
	}

	if logger != nil {
		logger.Error("oauth request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, errorResponse)
}

// RedirectWithCode sends the user agent back to redirectURI carrying the
// authorization code (and state, when present) in the query string.
func RedirectWithCode(c *gin.Context, redirectURI, code, state string) {
	redirect(c, redirectURI, url.Values{"code": {code}}, state)
}

// RedirectWithError sends the user agent back to redirectURI carrying an RFC
// 6749 error code. Only used once the redirect URI has been verified against
// the client's registered set.
func RedirectWithError(c *gin.Context, redirectURI, errorCode, state string) {
	redirect(c, redirectURI, url.Values{"error": {errorCode}}, state)
}

func redirect(c *gin.Context, redirectURI string, params url.Values, state string) {
	target, err := url.Parse(redirectURI)
	if err != nil {
		// The URI was validated upstream; a parse failure here is a bug
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
		return
	}

	query := target.Query()
	for key, values := range params {
		for _, value := range values {
			query.Set(key, value)
		}
	}
	if state != "" {
		query.Set("state", state)
	}
	target.RawQuery = query.Encode()

	c.Redirect(http.StatusFound, target.String())
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}
