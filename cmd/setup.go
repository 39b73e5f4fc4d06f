package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/wavelet/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase writes config.toml when missing, then opens the configured database and migrates it.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.loadOrCreateConfig(cmd.String("config"))

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	version, err := shared.GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	states, err := shared.MigrationStatus(db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	r.writePlain("  Schema version: %d\n", version)
	for _, s := range states {
		mark := "pending"
		if s.Applied() {
			mark = "applied " + s.AppliedAt.Local().Format("2006-01-02 15:04")
		}
		r.writePlain("  %04d %-20s %s\n", s.Version, s.Name, mark)
	}
	return nil
}

// loadOrCreateConfig falls back to defaults whenever the file cannot be created or parsed.
func (r *Runner) loadOrCreateConfig(path string) *shared.Config {
	if _, err := os.Stat(path); err != nil {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			return shared.DefaultConfig()
		}
		r.logger.Info("config file created", "path", path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return shared.DefaultConfig()
	}
	return config
}
