package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lowtide/lowtide/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates a starter config file and initializes the run-history
// database with migrations applied.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
		r.logger.Info("using existing config file", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.writePlain("✓ Created %s - edit it with your playlist ids before running\n", configPath)

		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
	}

	r.logger.Info("initializing run-history database", "path", config.History.Path)

	db, err := shared.NewDatabase(config.History.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.History.MaxOpenConns, config.History.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.History.Path)
	r.writePlain("Next steps:\n")
	r.writePlain("1. Set TIDAL_CLIENT_ID and TIDAL_CLIENT_SECRET (a .env file works)\n")
	r.writePlain("2. Run 'lowtide login' to authorize this device\n")
	r.writePlain("3. Run 'lowtide filter --dry-run' to preview the first curation pass\n")

	return nil
}
