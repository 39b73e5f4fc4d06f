package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/wavelet/internal/services"
	"github.com/desertthunder/wavelet/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config, err := shared.LoadConfig("config.toml")
	switch {
	case errors.Is(err, shared.ErrMissingConfig):
		config = shared.DefaultConfig()
		if err := shared.ApplyEnv(config); err != nil {
			logger.Warn("ignoring invalid environment overrides", "error", err)
		}
	case err != nil:
		logger.Warn("failed to load config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}

	var catalog services.Catalog
	if config.Catalog.APIKey != "" {
		if svc, err := services.NewCatalogService(services.CatalogOpts{
			BaseURL:           config.Catalog.BaseURL,
			APIKey:            config.Catalog.APIKey,
			RequestsPerSecond: config.Catalog.RequestsPerSecond,
			Timeout:           config.Catalog.Timeout(),
		}); err == nil {
			catalog = svc
		} else {
			logger.Warn("catalog unavailable", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		Catalog:    catalog,
		Logger:     logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:    "wavelet",
		Usage:   "Stream, like and buy music from the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   runner.before,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		runner.Close()
		if errors.Is(err, shared.ErrServiceUnavailable) || errors.Is(err, shared.ErrMissingCredentials) {
			logger.Error(err.Error())
			logger.Info("run `wavelet setup database` to write config.toml, then fill in the [catalog] and [payments] sections")
			os.Exit(2)
		}
		logger.Fatalf("application error: %v", err)
	}
}
