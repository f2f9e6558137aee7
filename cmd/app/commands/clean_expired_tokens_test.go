package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunCleanExpiredTokens(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mockExchangeUseCase{}
		mockUseCase.On("DeleteExpiredTokens", ctx).Return(int64(10), nil)

		var out bytes.Buffer
		err := RunCleanExpiredTokens(ctx, mockUseCase, logger, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Successfully deleted 10 expired token(s)")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &mockExchangeUseCase{}
		mockUseCase.On("DeleteExpiredTokens", ctx).Return(int64(5), nil)

		var out bytes.Buffer
		err := RunCleanExpiredTokens(ctx, mockUseCase, logger, &out, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"count": 5`)
		require.Contains(t, out.String(), `"kind": "tokens"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("storage-error", func(t *testing.T) {
		mockUseCase := &mockExchangeUseCase{}
		mockUseCase.On("DeleteExpiredTokens", ctx).Return(int64(0), errors.New("connection refused"))

		err := RunCleanExpiredTokens(ctx, mockUseCase, logger, &bytes.Buffer{}, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to delete expired tokens")
	})
}

func TestRunCleanExpiredCodes(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mockAuthorizeUseCase{}
		mockUseCase.On("DeleteExpiredCodes", ctx).Return(int64(3), nil)

		var out bytes.Buffer
		err := RunCleanExpiredCodes(ctx, mockUseCase, logger, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Successfully deleted 3 expired authorization code(s)")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &mockAuthorizeUseCase{}
		mockUseCase.On("DeleteExpiredCodes", ctx).Return(int64(0), nil)

		var out bytes.Buffer
		err := RunCleanExpiredCodes(ctx, mockUseCase, logger, &out, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"kind": "codes"`)
		mockUseCase.AssertExpectations(t)
	})
}
