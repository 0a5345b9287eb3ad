package main

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/library"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
)

// listingController builds a one-shot controller for a CLI request.
func (r *Runner) listingController(app *appState) *tasks.ListingController {
	return tasks.NewListingController(r.catalogFor(app), tasks.ListingOpts{
		Normalizer: r.normalizer,
		Logger:     r.logger,
	})
}

// filtersFromFlags validates --genre, --year, --rating and --sort into a filter set.
func filtersFromFlags(cmd *cli.Command, lookup models.GenreLookup) (models.FilterState, error) {
	filters := models.DefaultFilters()
	for _, field := range []string{models.FilterGenre, models.FilterYear, models.FilterRating, models.FilterSort} {
		v := cmd.String(field)
		if v == "" {
			continue
		}
		next, err := filters.With(field, v, lookup)
		if err != nil {
			return filters, fmt.Errorf("%w: --%s: %v", shared.ErrInvalidFlag, field, err)
		}
		filters = next
	}
	return filters, nil
}

// MoviesList prints one page of a category, switching to discover when filters are set.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	category, err := models.ParseCategory(cmd.String("category"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return r.runListing(ctx, cmd, tasks.ListingQuery{Category: category})
}

// MoviesSearch prints one page of title search results.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	return r.runListing(ctx, cmd, tasks.ListingQuery{Query: query})
}

func (r *Runner) runListing(ctx context.Context, cmd *cli.Command, q tasks.ListingQuery) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}
	if cmd.Int("page") < 1 {
		return fmt.Errorf("%w: --page must be at least 1", shared.ErrInvalidPage)
	}

	app, err := r.open(ctx)
	if err != nil {
		return err
	}

	ctrl := r.listingController(app)
	filters, err := filtersFromFlags(cmd, ctrl.Genres(ctx))
	if err != nil {
		return err
	}
	q.Filters = filters
	q.Page = cmd.Int("page")

	r.logger.Debug("loading listing", "mode", tasks.SelectMode(q.Query, q.Filters), "category", q.Category, "query", q.Query, "page", q.Page)

	state, err := ctrl.Load(ctx, q)
	if err != nil {
		return fmt.Errorf("%s: %w", state.Error, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(state, cmd.Bool("pretty"))
	}

	r.writePlainHeader(listingTitle(state))
	if len(state.Movies) == 0 {
		return r.writePlain("No movies found\n")
	}
	for _, m := range state.Movies {
		r.writeMovieLine(m, app.library.FlagsFor(m.ID))
	}
	r.writePlainln("Page %d of %d %s", state.Page, state.TotalPages, pageWindow(state))
	return nil
}

func listingTitle(s tasks.ListingState) string {
	switch s.Mode {
	case tasks.ModeSearch:
		return fmt.Sprintf("Search: %q", s.Query)
	case tasks.ModeDiscover:
		var parts []string
		for _, p := range []string{s.Filters.Genre, s.Filters.Year} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if s.Filters.Rating != "" {
			parts = append(parts, s.Filters.Rating+"+")
		}
		if s.Query != "" {
			parts = append(parts, strconv.Quote(s.Query))
		}
		return "Discover " + strings.Join(parts, " · ")
	default:
		return s.Category.Title() + " Movies"
	}
}

func pageWindow(s tasks.ListingState) string {
	var b strings.Builder
	b.WriteString("[")
	for i, p := range s.Window(5) {
		if i > 0 {
			b.WriteString(" ")
		}
		if p == s.Page {
			fmt.Fprintf(&b, "(%d)", p)
		} else {
			b.WriteString(strconv.Itoa(p))
		}
	}
	b.WriteString("]")
	return b.String()
}

func (r *Runner) writeMovieLine(m models.MovieRecord, flags library.Flags) {
	marks := ""
	if flags.Watchlist {
		marks += " ◉"
	}
	if flags.Favorite {
		marks += " ♥"
	}
	r.writePlain("%8d  %s (%s)  ★ %.1f  %s%s\n", m.ID, m.Title, m.Year, m.Rating, m.Genre, marks)
}

// MoviesShow prints the merged detail record for one movie.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}
	id := cmd.IntArg("id")
	if id <= 0 {
		return fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}

	app, err := r.open(ctx)
	if err != nil {
		return err
	}

	movie, err := r.listingController(app).Select(ctx, id)
	if err != nil {
		return err
	}
	flags := app.library.FlagsFor(id)

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			models.MovieRecord
			library.Flags
		}{movie, flags}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%s)", movie.Title, movie.Year))
	r.writePlain("Rating:    ★ %.1f\n", movie.Rating)
	if d := movie.Details; d != nil {
		r.writePlain("Genres:    %s\n", d.Genres)
		r.writePlain("Director:  %s\n", d.Director)
		r.writePlain("Cast:      %s\n", strings.Join(d.Cast, ", "))
		r.writePlain("Runtime:   %s\n", d.Runtime)
		r.writePlain("Budget:    %s\n", d.Budget)
		r.writePlain("Revenue:   %s\n", d.Revenue)
	} else {
		r.writePlain("Genres:    %s\n", movie.Genre)
	}
	r.writePlain("Poster:    %s\n", movie.Poster)
	r.writePlain("Watchlist: %s   Favorite: %s\n", yesNo(flags.Watchlist), yesNo(flags.Favorite))
	if movie.Overview != "" {
		r.writePlainln("%s", movie.Overview)
	}

	if cmd.Bool("open") && movie.Details != nil {
		if err := shared.OpenBrowser(ctx, movie.Details.Backdrop); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}

func (r *Runner) fetchGenres(ctx context.Context) ([]models.Genre, error) {
	genres, err := r.catalog.FetchGenres(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(genres, func(a, b models.Genre) int { return cmp.Compare(a.Name, b.Name) })
	return genres, nil
}

// MoviesGenres prints the catalog genre list.
func (r *Runner) MoviesGenres(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}
	genres, err := r.fetchGenres(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(genres, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Genres")
	for _, g := range genres {
		r.writePlain("%6d  %s\n", g.ID, g.Name)
	}
	return nil
}

// MoviesByGenre prints one page of movies for a named genre.
func (r *Runner) MoviesByGenre(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: genre name", shared.ErrMissingArgument)
	}

	genres, err := r.fetchGenres(ctx)
	if err != nil {
		return err
	}
	lookup := models.NewGenreLookup(genres)
	id, ok := models.GenreID(name, lookup)
	if !ok {
		return fmt.Errorf("%w: unknown genre %q", shared.ErrInvalidArgument, name)
	}

	app, err := r.open(ctx)
	if err != nil {
		return err
	}

	page, err := r.catalogFor(app).FetchByGenre(ctx, id, max(cmd.Int("page"), 1))
	if err != nil {
		return err
	}
	movies := r.normalizer.NormalizeAll(page.Results, lookup)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"genre":       models.Genre{ID: id, Name: lookup[id]},
			"page":        page.Page,
			"total_pages": max(page.TotalPages, 1),
			"movies":      movies,
		}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(cmp.Or(lookup[id], name) + " Movies")
	for _, m := range movies {
		r.writeMovieLine(m, app.library.FlagsFor(m.ID))
	}
	r.writePlainln("Page %d of %d", page.Page, max(page.TotalPages, 1))
	return nil
}
