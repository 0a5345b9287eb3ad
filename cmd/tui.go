package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
	"github.com/desertthunder/reelx/internal/ui"
)

// TUI launches the interactive terminal UI for browsing movies.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(r.config.Log)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	r.SetLogger(fileLogger)

	app, err := r.open(ctx)
	if err != nil {
		return err
	}

	ctrl := tasks.NewListingController(r.catalogFor(app), tasks.ListingOpts{
		Normalizer: r.normalizer,
		Logger:     fileLogger,
	})
	model := ui.NewModel(ctx, ctrl, app.library, app.activity)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
