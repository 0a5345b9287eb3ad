package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/server"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
)

// Serve runs the HTTP surface until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}
	app, err := r.open(ctx)
	if err != nil {
		return err
	}

	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, server.Deps{
		Catalog:    r.catalog,
		CatalogFor: func() services.Catalog { return r.catalogFor(app) },
		Session:    app.session,
		Library:    app.library,
		Activity:   app.activity,
		Normalizer: r.normalizer,
		Logger:     shared.WithLogger(r.logger, "component", "server"),
	})

	r.logger.Info("listening", "addr", cfg.Addr())
	return srv.ListenAndServe(ctx)
}
