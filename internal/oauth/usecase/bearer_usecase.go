package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tyratox/lazuli-auth/internal/config"
	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
	oauthService "github.com/tyratox/lazuli-auth/internal/oauth/service"
)

// bearerUseCase implements BearerUseCase for protected endpoints.
type bearerUseCase struct {
	config    *config.Config
	logger    *slog.Logger
	tokenRepo TokenRepository
	userRepo  UserRepository
	hasher    oauthService.HasherService
}

// Validate resolves a plain bearer token to its user and token records.
//
// Each validation first lazily sweeps expired token rows, then looks the
// token up by hash, resolves its user, slides the expiry window forward, and
// finally checks the required permissions against the user's hierarchical
// permission set. Tokens whose user has been deleted are removed on sight.
func (b *bearerUseCase) Validate(
	ctx context.Context,
	plainToken string,
	requiredPermissions []string,
) (*identityDomain.User, *oauthDomain.AccessToken, error) {
	now := time.Now().UTC()

	// Lazy sweep; validation proceeds even if it fails
	if _, err := b.tokenRepo.DeleteExpired(ctx, now); err != nil {
		b.logger.Warn("failed to sweep expired access tokens", slog.Any("error", err))
	}

	token, err := retryTransient(ctx, func(ctx context.Context) (*oauthDomain.AccessToken, error) {
		return b.tokenRepo.GetByTokenHash(ctx, b.hasher.LookupHash(plainToken))
	})
	if err != nil {
		if errors.Is(err, oauthDomain.ErrTokenNotFound) {
			return nil, nil, oauthDomain.ErrInvalidToken
		}
		return nil, nil, err
	}

	// The sweep may have raced or failed; never accept an expired token
	if token.Expired(now) {
		return nil, nil, oauthDomain.ErrInvalidToken
	}

	user, err := retryTransient(ctx, func(ctx context.Context) (*identityDomain.User, error) {
		return b.userRepo.Get(ctx, token.UserID)
	})
	if err != nil {
		if errors.Is(err, identityDomain.ErrUserNotFound) {
			// Orphaned token: its user is gone, so the token goes too
			if delErr := b.tokenRepo.Delete(ctx, token.ID); delErr != nil {
				b.logger.Warn("failed to delete orphaned access token",
					slog.String("token_id", token.ID.String()),
					slog.Any("error", delErr),
				)
			}
			return nil, nil, oauthDomain.ErrInvalidToken
		}
		return nil, nil, err
	}

	// Sliding expiry: every successful validation extends the window
	token.ExpiresAt = now.Add(b.config.AccessTokenLifetime)
	if err := b.tokenRepo.UpdateExpiry(ctx, token.ID, token.ExpiresAt); err != nil {
		return nil, nil, err
	}

	if !user.HasPermissions(requiredPermissions) {
		return nil, nil, oauthDomain.ErrInsufficientPermissions
	}

	return user, token, nil
}

// ValidateSoft is Validate without permission checks; any failure yields a
// nil user instead of an error, for endpoints where authentication is
// optional.
func (b *bearerUseCase) ValidateSoft(
	ctx context.Context,
	plainToken string,
) (*identityDomain.User, *oauthDomain.AccessToken) {
	user, token, err := b.Validate(ctx, plainToken, nil)
	if err != nil {
		return nil, nil
	}
	return user, token
}

// NewBearerUseCase creates a new BearerUseCase with the provided dependencies.
func NewBearerUseCase(
	cfg *config.Config,
	logger *slog.Logger,
	tokenRepo TokenRepository,
	userRepo UserRepository,
	hasher oauthService.HasherService,
) BearerUseCase {
	return &bearerUseCase{
		config:    cfg,
		logger:    logger,
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
		hasher:    hasher,
	}
}
