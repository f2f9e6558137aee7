package dto

import (
	"time"

	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// TokenResponse is the RFC 6749 token endpoint success shape.
// SECURITY: The access token is only returned once and must be saved securely.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// MapGrantToTokenResponse converts a token grant to the wire response.
// ExpiresIn is relative to now; the stored expiry keeps sliding afterwards.
func MapGrantToTokenResponse(grant *oauthDomain.TokenGrant, now time.Time) TokenResponse {
	return TokenResponse{
		AccessToken: grant.PlainToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(grant.Token.ExpiresAt.Sub(now).Seconds()),
		Scope:       oauthDomain.JoinScope(oauthDomain.ScopeNames(grant.Token.Scopes)),
	}
}

// ConsentRequiredResponse tells the caller to render the consent screen and
// post the decision back with the transaction ID.
type ConsentRequiredResponse struct {
	ConsentRequired bool     `json:"consent_required"`
	TransactionID   string   `json:"transaction_id"`
	ClientName      string   `json:"client_name"`
	Scopes          []string `json:"scopes"`
}

// UserinfoResponse represents the authenticated user behind a bearer token.
type UserinfoResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Permissions []string `json:"permissions"`
	Scopes      []string `json:"scopes,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// MapUserToUserinfoResponse converts a user and their validated token to the
// userinfo response.
func MapUserToUserinfoResponse(user *identityDomain.User, token *oauthDomain.AccessToken) UserinfoResponse {
	response := UserinfoResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Permissions: user.Permissions,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
	if token != nil {
		response.Scopes = oauthDomain.ScopeNames(token.Scopes)
	}
	return response
}
