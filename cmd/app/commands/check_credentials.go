package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	identityStrategy "github.com/tyratox/lazuli-auth/internal/identity/strategy"
)

// RunCheckCredentials resolves a credential to the user account it
// authenticates: a bearer token to its user, a client id/secret pair to the
// client's owner, or an email/password pair to the account itself. The
// strategy is picked from the credential shape, so exactly one shape must be
// provided. Meant for verifying issued credentials from an operator shell.
//
// Requirements: Database must be migrated and accessible.
func RunCheckCredentials(
	ctx context.Context,
	passwordStrategy identityStrategy.Strategy,
	tokenStrategy identityStrategy.Strategy,
	clientStrategy identityStrategy.Strategy,
	logger *slog.Logger,
	ioTuple IOTuple,
	email string,
	password string,
	token string,
	clientID string,
	clientSecret string,
	format string,
) error {
	var strategy identityStrategy.Strategy
	var shape string
	switch {
	case token != "":
		strategy, shape = tokenStrategy, "bearer token"
	case clientID != "" || clientSecret != "":
		strategy, shape = clientStrategy, "client credentials"
	case email != "" || password != "":
		strategy, shape = passwordStrategy, "password"
	default:
		return fmt.Errorf("provide a token, a client id and secret, or an email and password")
	}

	logger.Info("checking credentials", slog.String("shape", shape))

	user, err := strategy.Authenticate(ctx, identityStrategy.Credentials{
		Email:        email,
		Password:     password,
		Token:        token,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
	if err != nil {
		return fmt.Errorf("credentials rejected: %w", err)
	}

	if format == "json" {
		outputCheckCredentialsJSON(shape, user, ioTuple.Writer)
	} else {
		outputCheckCredentialsText(shape, user, ioTuple.Writer)
	}

	return nil
}

// outputCheckCredentialsText outputs the result in human-readable text format.
func outputCheckCredentialsText(shape string, user *identityDomain.User, writer io.Writer) {
	_, _ = fmt.Fprintf(writer, "Credentials accepted (%s).\n", shape)
	_, _ = fmt.Fprintf(writer, "User ID:      %s\n", user.ID)
	_, _ = fmt.Fprintf(writer, "Email:        %s\n", user.Email)
	_, _ = fmt.Fprintf(writer, "Display Name: %s\n", user.DisplayName)
	if len(user.Permissions) > 0 {
		_, _ = fmt.Fprintf(writer, "Permissions:  %s\n", strings.Join(user.Permissions, ", "))
	}
}

// outputCheckCredentialsJSON outputs the result in JSON format for machine consumption.
func outputCheckCredentialsJSON(shape string, user *identityDomain.User, writer io.Writer) {
	result := map[string]interface{}{
		"credential_shape": shape,
		"user_id":          user.ID.String(),
		"email":            user.Email,
		"display_name":     user.DisplayName,
		"permissions":      user.Permissions,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(writer, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
