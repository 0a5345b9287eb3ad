package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/repositories"
)

// Activity lists recent actions, optionally pruning old entries first.
func (r *Runner) Activity(ctx context.Context, cmd *cli.Command) error {
	app, err := r.open(ctx)
	if err != nil {
		return err
	}

	if age := cmd.Duration("prune"); age > 0 {
		n, err := repositories.NewActivityRepository(r.db).Prune(ctx, time.Now().Add(-age))
		if err != nil {
			return err
		}
		r.logger.Info("pruned activity", "removed", n, "older_than", age)
	}

	entries, err := app.activity.Recent(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*models.Activity{}
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Recent Activity")
	if len(entries) == 0 {
		return r.writePlain("No activity yet\n")
	}
	for _, a := range entries {
		r.writePlain("%s\n", a)
	}
	return nil
}
