package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/library"
	"github.com/desertthunder/reelx/internal/normalizer"
	"github.com/desertthunder/reelx/internal/repositories"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/storage"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.Catalog
	identity   services.Identity
	normalizer *normalizer.Normalizer
	logger     *log.Logger
	output     io.Writer
	fs         afero.Fs

	mu      sync.Mutex
	storage storage.Storage
	db      *sql.DB
	app     *appState
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.Catalog
	Identity   services.Identity
	Logger     *log.Logger
	Output     io.Writer
	Fs         afero.Fs        // defaults to the OS filesystem
	Storage    storage.Storage // overrides the configured backend
	DB         *sql.DB         // overrides the configured database
}

// appState is everything that touches disk, opened on first use.
type appState struct {
	store    storage.Storage
	session  *session.Controller
	library  *library.Store
	activity *repositories.ActivityLog
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		identity:   opts.Identity,
		normalizer: normalizer.New(opts.Config.Media),
		logger:     opts.Logger,
		output:     opts.Output,
		fs:         opts.Fs,
		storage:    opts.Storage,
		db:         opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, watchlistCommand, favoritesCommand, activityCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. when the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// open wires storage, session, library and activity on first call and restores any saved session.
func (r *Runner) open(ctx context.Context) (*appState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.app != nil {
		return r.app, nil
	}

	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return nil, err
		}
		r.db = db
	}

	if r.storage == nil {
		st, err := r.openStorage()
		if err != nil {
			return nil, err
		}
		r.storage = st
	}

	sess := session.New(r.identity, r.storage, r.logger)
	if _, err := sess.Restore(ctx); err != nil {
		return nil, err
	}

	lib, err := library.Open(ctx, r.storage, r.logger)
	if err != nil {
		return nil, err
	}

	r.app = &appState{
		store:    r.storage,
		session:  sess,
		library:  lib,
		activity: repositories.NewActivityLog(repositories.NewActivityRepository(r.db), r.logger),
	}
	return r.app, nil
}

// openStorage selects the snapshot backend named in config.
func (r *Runner) openStorage() (storage.Storage, error) {
	cfg := r.config.Storage
	r.logger.Debug("opening storage", "backend", cfg.Backend, "path", cfg.Path)

	switch cfg.Backend {
	case "sqlite", "":
		return repositories.NewSnapshotRepository(r.db), nil
	case "badger":
		return storage.OpenBadger(cfg.Path)
	case "file":
		return storage.NewFile(r.fs, cfg.Path)
	case "memory":
		return storage.NewMemory(), nil
	}
	return nil, fmt.Errorf("%w: unknown storage backend %q", shared.ErrInvalidConfig, cfg.Backend)
}

// Close releases storage and the database.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.storage != nil {
		errs = append(errs, r.storage.Close())
	}
	if r.db != nil {
		errs = append(errs, r.db.Close())
	}
	r.storage, r.db, r.app = nil, nil, nil
	return errors.Join(errs...)
}

// catalogFor attaches the session token to catalog requests when a session exists.
func (r *Runner) catalogFor(app *appState) services.Catalog {
	sess := app.session.Current()
	if c, ok := r.catalog.(*services.CatalogService); ok && sess != nil {
		return c.WithToken(sess.Token)
	}
	return r.catalog
}

func (r *Runner) requireCatalog() error {
	if r.catalog == nil {
		return fmt.Errorf("%w: catalog service not configured", shared.ErrMissingConfig)
	}
	return nil
}

func (r *Runner) requireIdentity() error {
	if r.identity == nil {
		return fmt.Errorf("%w: identity service not configured", shared.ErrMissingConfig)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
