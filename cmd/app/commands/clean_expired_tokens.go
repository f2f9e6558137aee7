package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	oauthUseCase "github.com/tyratox/lazuli-auth/internal/oauth/usecase"
)

// RunCleanExpiredTokens deletes all access tokens whose expiry has passed.
// Expired tokens are also swept lazily during validation; this command exists
// for scheduled cleanup so dormant rows do not accumulate.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpiredTokens(
	ctx context.Context,
	exchangeUseCase oauthUseCase.ExchangeUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("cleaning expired tokens")

	count, err := exchangeUseCase.DeleteExpiredTokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	if format == "json" {
		outputCleanupJSON("tokens", count, writer)
	} else {
		outputCleanupText("token", count, writer)
	}

	logger.Info("cleanup completed", slog.Int64("count", count))

	return nil
}

// RunCleanExpiredCodes deletes all authorization codes whose expiry has passed.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpiredCodes(
	ctx context.Context,
	authorizeUseCase oauthUseCase.AuthorizeUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("cleaning expired authorization codes")

	count, err := authorizeUseCase.DeleteExpiredCodes(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete expired authorization codes: %w", err)
	}

	if format == "json" {
		outputCleanupJSON("codes", count, writer)
	} else {
		outputCleanupText("authorization code", count, writer)
	}

	logger.Info("cleanup completed", slog.Int64("count", count))

	return nil
}

// outputCleanupText outputs the result in human-readable text format.
func outputCleanupText(noun string, count int64, writer io.Writer) {
	_, _ = fmt.Fprintf(writer, "Successfully deleted %d expired %s(s)\n", count, noun)
}

// outputCleanupJSON outputs the result in JSON format for machine consumption.
func outputCleanupJSON(kind string, count int64, writer io.Writer) {
	result := map[string]interface{}{
		"kind":  kind,
		"count": count,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(writer, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
