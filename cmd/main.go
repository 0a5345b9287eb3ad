package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
)

const configFile = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(configFile); err == nil {
		if loadedConfig, err := shared.LoadConfig(configFile); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	if err := config.ApplyEnv(); err != nil {
		logger.Fatalf("invalid environment: %v", err)
	}
	shared.SetLogLevel(logger, shared.ParseLevel(config.Log.Level))

	catalogAPI := services.NewAPIService(services.APIOptions{
		Name:      "catalog",
		BaseURL:   config.API.CatalogURL,
		RateLimit: config.API.RateLimit,
		Logger:    logger,
	})
	identityAPI := services.NewAPIService(services.APIOptions{
		Name:    "identity",
		BaseURL: config.API.IdentityURL,
		Logger:  logger,
	})

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configFile,
		Catalog:    services.NewCatalogService(catalogAPI),
		Identity:   services.NewIdentityService(identityAPI),
		Logger:     logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "reelx",
		Usage:    "Browse, search and collect movies from the catalog API",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			return
		}
		runner.Close()
		logger.Fatal(shared.UserMessage(err), "error", err)
	}
}
