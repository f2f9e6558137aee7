package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	oauthDomain "github.com/tyratox/lazuli-auth/internal/oauth/domain"
	oauthUseCase "github.com/tyratox/lazuli-auth/internal/oauth/usecase"
)

// RunCreateClient registers a new OAuth client owned by the given user.
// Outputs the client ID and the plain secret in either text or JSON format.
// The plain secret is shown exactly once and cannot be retrieved later.
//
// Requirements: Database must be migrated and accessible.
func RunCreateClient(
	ctx context.Context,
	clientUseCase oauthUseCase.ClientUseCase,
	logger *slog.Logger,
	writer io.Writer,
	name string,
	trusted bool,
	userIDStr string,
	redirectURIsStr string,
	format string,
) error {
	logger.Info("creating new client", slog.String("name", name))

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	redirectURIs := parseList(redirectURIsStr)
	if len(redirectURIs) == 0 {
		return fmt.Errorf("at least one redirect URI is required")
	}

	output, err := clientUseCase.Create(ctx, &oauthDomain.CreateClientInput{
		Name:         name,
		Trusted:      trusted,
		UserID:       userID,
		RedirectURIs: redirectURIs,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if format == "json" {
		outputCreateClientJSON(output, writer)
	} else {
		outputCreateClientText(output, writer)
	}

	logger.Info("client created successfully",
		slog.String("client_id", output.ID.String()),
		slog.String("name", name),
		slog.Bool("trusted", trusted),
	)

	return nil
}

// outputCreateClientText outputs the result in human-readable text format.
func outputCreateClientText(output *oauthDomain.CreateClientOutput, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "Client created successfully!")
	_, _ = fmt.Fprintf(writer, "Client ID:     %s\n", output.ID)
	_, _ = fmt.Fprintf(writer, "Client Secret: %s\n", output.PlainSecret)
	_, _ = fmt.Fprintln(writer, "\nStore the secret securely - it cannot be retrieved again.")
}

// outputCreateClientJSON outputs the result in JSON format for machine consumption.
func outputCreateClientJSON(output *oauthDomain.CreateClientOutput, writer io.Writer) {
	result := map[string]interface{}{
		"client_id":     output.ID.String(),
		"client_secret": output.PlainSecret,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(writer, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
