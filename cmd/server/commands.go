// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/simarsingh24/open-event-server/internal/app"
	"github.com/simarsingh24/open-event-server/internal/config"
	"github.com/simarsingh24/open-event-server/internal/database"
	"github.com/simarsingh24/open-event-server/internal/logging"
	"github.com/simarsingh24/open-event-server/internal/models"
)

// cliDeps are the seams the commands are built on.
type cliDeps struct {
	loadConfig func() (*config.Config, error)
}

func defaultDeps() cliDeps {
	return cliDeps{loadConfig: config.Load}
}

// newRootCmd builds the command manager. Running it without a subcommand
// serves.
func newRootCmd(deps cliDeps) *cobra.Command {
	serve := newServeCmd(deps)

	root := &cobra.Command{
		Use:           "open-event",
		Short:         "Open Event server and management commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newDBCmd(deps), newUserCmd(deps))
	return root
}

// loadAndLog loads the configuration and applies its logging settings.
func loadAndLog(deps cliDeps) (*config.Config, error) {
	cfg, err := deps.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	return cfg, nil
}

func newServeCmd(deps cliDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadAndLog(deps)
			if err != nil {
				return err
			}
			logging.Info().Str("profile", string(cfg.Profile)).Msg("Starting Open Event server")

			a, err := app.Create(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					logging.Error().Err(err).Msg("Error during shutdown")
				}
			}()

			if err := a.Run(cmd.Context()); err != nil {
				return err
			}
			logging.Info().Msg("Server stopped gracefully")
			return nil
		},
	}
}

// openDatabase opens the configured database for a maintenance command.
func openDatabase(deps cliDeps) (*database.DB, error) {
	cfg, err := loadAndLog(deps)
	if err != nil {
		return nil, err
	}
	return database.New(&cfg.Database)
}

func closeDatabase(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}

func newDBCmd(deps cliDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "upgrade",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDatabase(deps)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			applied, err := db.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			version, err := db.CurrentVersion(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s), schema at version %d\n", applied, version)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDatabase(deps)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			version, err := db.CurrentVersion(cmd.Context())
			if err != nil {
				return err
			}
			known := database.Migrations()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d (latest %d)\n", version, known[len(known)-1].Version)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "List applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDatabase(deps)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			history, err := db.MigrationHistory(cmd.Context())
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), history)
		},
	})

	return cmd
}

func printHistory(out io.Writer, history []database.Migration) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED")
	for _, m := range history {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", m.Version, m.Name, m.AppliedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func newUserCmd(deps cliDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User account management",
	}

	var nu app.NewUser
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDatabase(deps)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			if _, err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			u, err := app.CreateUser(cmd.Context(), db, nu)
			if err != nil {
				return fmt.Errorf("failed to create user %s: %w", nu.Email, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", u.Role, u.Email, u.ID)
			return err
		},
	}
	create.Flags().StringVar(&nu.Email, "email", "", "email address (required)")
	create.Flags().StringVar(&nu.Password, "password", "", "password (required)")
	create.Flags().StringVar(&nu.Role, "role", models.RoleUser, "role: admin or user")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
