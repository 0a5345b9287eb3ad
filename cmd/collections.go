package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/desertthunder/reelx/internal/library"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
)

func parseIDs(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: movie id %q", shared.ErrInvalidArgument, a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CollectionAdd returns the action that adds ids to c. Ids already present are left alone.
func (r *Runner) CollectionAdd(c library.Collection) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return r.setMembership(ctx, cmd, c, true)
	}
}

// CollectionRemove returns the action that removes ids from c. Absent ids are left alone.
func (r *Runner) CollectionRemove(c library.Collection) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return r.setMembership(ctx, cmd, c, false)
	}
}

func (r *Runner) setMembership(ctx context.Context, cmd *cli.Command, c library.Collection, want bool) error {
	ids, err := parseIDs(cmd.Args().Slice())
	if err != nil {
		return err
	}
	app, err := r.open(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if app.library.Contains(c, id) == want {
			r.writePlain("• %d already %s\n", id, membershipWord(want, c))
			continue
		}
		added, err := app.library.Toggle(ctx, c, id)
		if err != nil {
			return err
		}
		app.activity.Log(ctx, c.ActivityKind(added), id, "")
		r.writePlain("✓ %d %s\n", id, membershipWord(added, c))
	}
	return nil
}

func membershipWord(in bool, c library.Collection) string {
	if in {
		return "in " + c.Title()
	}
	return "not in " + c.Title()
}

// CollectionList returns the action that prints c, resolving details unless --ids is set.
func (r *Runner) CollectionList(c library.Collection) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		app, err := r.open(ctx)
		if err != nil {
			return err
		}
		ids := app.library.IDs(c)

		if cmd.Bool("ids") || r.catalog == nil {
			if cmd.Bool("json") {
				return r.writeJSON(ids, cmd.Bool("pretty"))
			}
			r.writePlainHeader(fmt.Sprintf("%s (%d)", c.Title(), len(ids)))
			for _, id := range ids {
				r.writePlain("%8d\n", id)
			}
			return nil
		}

		res, err := tasks.ResolveMovies(ctx, r.catalogFor(app), ids, r.resolveOpts(cmd, nil))
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(res.Movies, cmd.Bool("pretty"))
		}

		r.writePlainHeader(fmt.Sprintf("%s (%d)", c.Title(), len(ids)))
		if len(ids) == 0 {
			return r.writePlain("Nothing saved yet\n")
		}
		for _, m := range res.Movies {
			r.writeMovieLine(m, app.library.FlagsFor(m.ID))
		}
		r.writeFailures(res.Failed)
		return nil
	}
}

func (r *Runner) writeFailures(failed []tasks.FailedMovie) {
	if len(failed) == 0 {
		return
	}
	r.writePlainln("Could not load %d movies:", len(failed))
	for _, f := range failed {
		r.writePlain("  ✗ %d: %s\n", f.ID, shared.UserMessage(f.Err))
	}
}

func (r *Runner) resolveOpts(cmd *cli.Command, progress chan<- tasks.ProgressUpdate) tasks.ResolveOpts {
	workers := r.config.API.Workers
	if cmd.IsSet("workers") {
		workers = cmd.Int("workers")
	}
	return tasks.ResolveOpts{
		Workers:    workers,
		RateLimit:  r.config.API.RateLimit,
		Normalizer: r.normalizer,
		Progress:   progress,
		Logger:     r.logger,
	}
}

// CollectionExport returns the action that writes c to a file.
func (r *Runner) CollectionExport(c library.Collection) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := r.requireCatalog(); err != nil {
			return err
		}
		format, err := formatter.ParseFormat(cmd.String("format"))
		if err != nil {
			return err
		}
		app, err := r.open(ctx)
		if err != nil {
			return err
		}
		ids := app.library.IDs(c)
		if len(ids) == 0 {
			return r.writePlain("%s is empty, nothing to export\n", c.Title())
		}

		progressCh := make(chan tasks.ProgressUpdate, 50)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range progressCh {
				switch update.Phase {
				case tasks.ResolveDetails:
					r.writePlain("🔍 %s\n", update.Message)
				case tasks.WriteExport:
					r.writePlain("💾 %s\n", update.Message)
				default:
					r.writePlain("%s\n", update.Message)
				}
			}
		}()

		r.writePlain("Exporting %d movies from %s\n\n", len(ids), c.Title())
		result, err := tasks.ExportCollection(ctx, r.catalogFor(app), ids, tasks.ExportOpts{
			ResolveOpts: r.resolveOpts(cmd, progressCh),
			Name:        c.Title(),
			Format:      format,
			Path:        cmd.String("output"),
			Fs:          r.fs,
		})
		close(progressCh)
		<-done

		if err != nil {
			return err
		}
		app.activity.Log(ctx, models.ActivityCollectionExport, 0, fmt.Sprintf("%s → %s", c, result.Path))

		r.writePlainln("✓ Exported %d of %d movies to %s", result.Count, len(ids), result.Path)
		r.writeFailures(result.Failed)
		return nil
	}
}
