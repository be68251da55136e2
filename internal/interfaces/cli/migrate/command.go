// Package migrate implements the `migrate` CLI command group.
package migrate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nomadly/internal/infrastructure/config"
	"nomadly/internal/infrastructure/database"
	"nomadly/internal/infrastructure/migration"
	"nomadly/internal/shared/logger"
)

var (
	env string
	dir string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply or roll back the goose SQL migrations that define the database schema.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&dir, "dir", "d", "", "Migrations directory (default: ./migrations)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initEnv(); err != nil {
				return err
			}
			defer database.Close()
			return migration.Up(database.Get(), dir)
		},
	}
}

func newDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Rollback the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initEnv(); err != nil {
				return err
			}
			defer database.Close()
			return migration.Down(database.Get(), dir)
		},
	}
}

func initEnv() error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, env != "production"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	return nil
}
