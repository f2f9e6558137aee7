package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/tyratox/lazuli-auth/cmd/app/commands"
	"github.com/tyratox/lazuli-auth/internal/app"
	"github.com/tyratox/lazuli-auth/internal/config"
)

func getIdentityCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Register a new user account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "User email address",
				},
				&cli.StringFlag{
					Name:     "display-name",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Human-readable display name",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Password (omit to be prompted interactively)",
				},
				&cli.StringFlag{
					Name:  "permissions",
					Usage: "Comma-separated list of permission strings",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateUser(
					ctx,
					userUseCase,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("email"),
					cmd.String("display-name"),
					cmd.String("password"),
					cmd.String("permissions"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "check-credentials",
			Usage: "Resolve a credential to the user account it authenticates",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "email",
					Aliases: []string{"e"},
					Usage:   "User email address (with --password)",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "User password (with --email)",
				},
				&cli.StringFlag{
					Name:    "token",
					Aliases: []string{"t"},
					Usage:   "Bearer access token",
				},
				&cli.StringFlag{
					Name:  "client-id",
					Usage: "OAuth client id (with --client-secret), resolves the client's owner",
				},
				&cli.StringFlag{
					Name:  "client-secret",
					Usage: "OAuth client secret (with --client-id)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				passwordStrategy, err := container.LocalPasswordStrategy()
				if err != nil {
					return err
				}
				tokenStrategy, err := container.BearerTokenStrategy()
				if err != nil {
					return err
				}
				clientStrategy, err := container.ClientCredentialStrategy()
				if err != nil {
					return err
				}

				return commands.RunCheckCredentials(
					ctx,
					passwordStrategy,
					tokenStrategy,
					clientStrategy,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("email"),
					cmd.String("password"),
					cmd.String("token"),
					cmd.String("client-id"),
					cmd.String("client-secret"),
					cmd.String("format"),
				)
			},
		},
	}
}
