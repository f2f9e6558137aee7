// Package http provides the OAuth2 protocol endpoints and bearer middleware.
package http

import (
	"context"

	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
)

// userKey is a context key type for the authenticated user.
type userKey struct{}

// tokenKey is a context key type for the validated access token.
type tokenKey struct{}

// WithUser stores the authenticated user in the context. Called by the bearer
// middleware after a successful validation.
func WithUser(ctx context.Context, user *identityDomain.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser retrieves the authenticated user from the context.
// Returns (nil, false) when no bearer middleware ran or validation failed softly.
func GetUser(ctx context.Context) (*identityDomain.User, bool) {
	user, ok := ctx.Value(userKey{}).(*identityDomain.User)
	return user, ok
}

// WithToken stores the validated access token in the context.
func WithToken(ctx context.Context, token *oauthDomain.AccessToken) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// GetToken retrieves the validated access token from the context.
func GetToken(ctx context.Context) (*oauthDomain.AccessToken, bool) {
	token, ok := ctx.Value(tokenKey{}).(*oauthDomain.AccessToken)
	return token, ok
}
