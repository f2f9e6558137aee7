package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	identityDomain "github.com/tyratox/lazuli-auth/internal/identity/domain"
	identityUseCase "github.com/tyratox/lazuli-auth/internal/identity/usecase"
)

// RunCreateUser registers a new user account. When the password flag is empty
// the command prompts for it interactively so it does not end up in shell
// history. Outputs the created user in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateUser(
	ctx context.Context,
	userUseCase identityUseCase.UserUseCase,
	logger *slog.Logger,
	ioTuple IOTuple,
	email string,
	displayName string,
	password string,
	permissionsStr string,
	format string,
) error {
	logger.Info("creating new user", slog.String("email", email))

	if password == "" {
		var err error
		password, err = promptForPassword(ioTuple)
		if err != nil {
			return fmt.Errorf("failed to get password: %w", err)
		}
	}

	user, err := userUseCase.Register(ctx, identityUseCase.RegisterUserInput{
		Email:       email,
		DisplayName: displayName,
		Password:    password,
		Permissions: parseList(permissionsStr),
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if format == "json" {
		outputCreateUserJSON(user, ioTuple.Writer)
	} else {
		outputCreateUserText(user, ioTuple.Writer)
	}

	logger.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.String("email", user.Email),
	)

	return nil
}

// promptForPassword reads the password from the interactive reader.
func promptForPassword(ioTuple IOTuple) (string, error) {
	reader := bufio.NewReader(ioTuple.Reader)

	_, _ = fmt.Fprint(ioTuple.Writer, "Enter password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	return password, nil
}

// outputCreateUserText outputs the result in human-readable text format.
func outputCreateUserText(user *identityDomain.User, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "User created successfully!")
	_, _ = fmt.Fprintf(writer, "User ID:      %s\n", user.ID)
	_, _ = fmt.Fprintf(writer, "Email:        %s\n", user.Email)
	_, _ = fmt.Fprintf(writer, "Display Name: %s\n", user.DisplayName)
	if len(user.Permissions) > 0 {
		_, _ = fmt.Fprintf(writer, "Permissions:  %s\n", strings.Join(user.Permissions, ", "))
	}
}

// outputCreateUserJSON outputs the result in JSON format for machine consumption.
func outputCreateUserJSON(user *identityDomain.User, writer io.Writer) {
	result := map[string]interface{}{
		"user_id":      user.ID.String(),
		"email":        user.Email,
		"display_name": user.DisplayName,
		"permissions":  user.Permissions,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(writer, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
