package tasks

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"

	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/normalizer"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
)

const defaultWorkers = 4

// ResolveOpts configures [ResolveMovies].
type ResolveOpts struct {
	Workers    int           // concurrent detail fetches, defaults to 4
	RateLimit  float64       // requests per second across all workers, 0 disables limiting
	Normalizer *normalizer.Normalizer
	Progress   chan<- ProgressUpdate
	Logger     *log.Logger
}

// FailedMovie is an id whose details could not be fetched.
type FailedMovie struct {
	ID  int
	Err error
}

// ResolveResult holds the records for every id that resolved, in input order.
type ResolveResult struct {
	Movies []models.MovieRecord
	Failed []FailedMovie
}

type resolved struct {
	index int
	movie models.MovieRecord
	err   error
}

// ResolveMovies fetches and normalizes details for ids.
//
// Per-id failures are collected rather than aborting the run. Only a cancelled context
// is returned as an error.
func ResolveMovies(ctx context.Context, catalog services.Catalog, ids []int, opts ResolveOpts) (*ResolveResult, error) {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Normalizer == nil {
		opts.Normalizer = normalizer.New(shared.MediaConfig{})
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	sendProgress(opts.Progress, fetchGenresUpdate())
	var lookup models.GenreLookup
	if genres, err := catalog.FetchGenres(ctx); err != nil {
		opts.Logger.Warn("genre lookup unavailable for export", "error", err)
	} else {
		lookup = models.NewGenreLookup(genres)
	}

	total := len(ids)
	var done atomic.Int64
	p := pool.NewWithResults[resolved]().WithMaxGoroutines(opts.Workers)
	for i, id := range ids {
		p.Go(func() resolved {
			r := resolved{index: i}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					r.err = err
					return r
				}
			}

			raw, err := catalog.FetchDetails(ctx, id)
			step := int(done.Add(1))
			if err != nil {
				r.err = err
				opts.Logger.Debug("detail fetch failed", "id", id, "error", err)
				sendProgress(opts.Progress, resolveFailedUpdate(step, total, id, err))
				return r
			}
			r.movie = opts.Normalizer.Normalize(*raw, lookup)
			sendProgress(opts.Progress, resolvedUpdate(step, total, id, r.movie.Title))
			return r
		})
	}
	results := p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })

	out := &ResolveResult{Movies: make([]models.MovieRecord, 0, total)}
	for _, r := range results {
		if r.err != nil {
			out.Failed = append(out.Failed, FailedMovie{ID: ids[r.index], Err: r.err})
			continue
		}
		out.Movies = append(out.Movies, r.movie)
	}
	return out, nil
}

// ExportOpts configures [ExportCollection].
type ExportOpts struct {
	ResolveOpts
	Name   string
	Format formatter.Format
	Path   string   // defaults to formatter.DefaultFilename
	Fs     afero.Fs // defaults to the OS filesystem
}

// ExportResult reports the written file and any ids that were skipped.
type ExportResult struct {
	Path   string
	Count  int
	Failed []FailedMovie
}

// ExportCollection resolves ids and writes them as one file.
func ExportCollection(ctx context.Context, catalog services.Catalog, ids []int, opts ExportOpts) (*ExportResult, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatCSV
	}

	res, err := ResolveMovies(ctx, catalog, ids, opts.ResolveOpts)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", opts.Name, err)
	}

	export := &formatter.Export{Name: opts.Name, ExportedAt: time.Now().UTC(), Movies: res.Movies}
	path, err := formatter.WriteExport(opts.Fs, export, opts.Format, opts.Path)
	if err != nil {
		return nil, err
	}
	sendProgress(opts.Progress, writeExportUpdate(path, len(res.Movies)))

	return &ExportResult{Path: path, Count: len(res.Movies), Failed: res.Failed}, nil
}
