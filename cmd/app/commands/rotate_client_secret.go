package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	oauthUseCase "github.com/tyratox/lazuli-auth/internal/oauth/usecase"
)

// RunRotateClientSecret generates a fresh secret for an existing client.
// The previous secret stops working immediately. Outputs the new plain secret
// in either text or JSON format; it is shown exactly once.
//
// Requirements: Database must be migrated and accessible.
func RunRotateClientSecret(
	ctx context.Context,
	clientUseCase oauthUseCase.ClientUseCase,
	logger *slog.Logger,
	writer io.Writer,
	clientIDStr string,
	format string,
) error {
	clientID, err := uuid.Parse(clientIDStr)
	if err != nil {
		return fmt.Errorf("invalid client id: %w", err)
	}

	logger.Info("rotating client secret", slog.String("client_id", clientID.String()))

	plainSecret, err := clientUseCase.RotateSecret(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to rotate client secret: %w", err)
	}

	if format == "json" {
		outputRotateSecretJSON(clientID, plainSecret, writer)
	} else {
		outputRotateSecretText(clientID, plainSecret, writer)
	}

	logger.Info("client secret rotated successfully", slog.String("client_id", clientID.String()))

	return nil
}

// outputRotateSecretText outputs the result in human-readable text format.
func outputRotateSecretText(clientID uuid.UUID, plainSecret string, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "Client secret rotated successfully!")
	_, _ = fmt.Fprintf(writer, "Client ID:     %s\n", clientID)
	_, _ = fmt.Fprintf(writer, "Client Secret: %s\n", plainSecret)
	_, _ = fmt.Fprintln(writer, "\nStore the secret securely - it cannot be retrieved again.")
}

// outputRotateSecretJSON outputs the result in JSON format for machine consumption.
func outputRotateSecretJSON(clientID uuid.UUID, plainSecret string, writer io.Writer) {
	result := map[string]interface{}{
		"client_id":     clientID.String(),
		"client_secret": plainSecret,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(writer, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
