package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/normalizer"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
)

// Mode is the endpoint family a listing load goes to.
type Mode int

const (
	ModeCategory Mode = iota
	ModeSearch
	ModeDiscover
)

func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeDiscover:
		return "discover"
	default:
		return "category"
	}
}

// SelectMode routes a query: any non-default filter means discover, otherwise a
// non-empty query means search, otherwise the category listing.
func SelectMode(query string, filters models.FilterState) Mode {
	if !filters.IsDefault() {
		return ModeDiscover
	}
	if strings.TrimSpace(query) != "" {
		return ModeSearch
	}
	return ModeCategory
}

// Status is the listing lifecycle: Idle → Loading → Ready | Failed.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ErrorKindLoadFailed is the only error kind a listing can enter.
const ErrorKindLoadFailed = "load-failed"

// User-visible failure messages.
const (
	MsgListingFailed = "Failed to load movies data"
	MsgSearchFailed  = "Failed to load search results"
)

// ErrSuperseded is returned to a caller whose load was overtaken by a newer one.
var ErrSuperseded = errors.New("listing load superseded by a newer request")

// ListingState is a snapshot of one listing surface.
type ListingState struct {
	Status     Status               `json:"status"`
	Mode       Mode                 `json:"mode"`
	Category   models.Category      `json:"category"`
	Query      string               `json:"query,omitempty"`
	Filters    models.FilterState   `json:"filters"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
	Movies     []models.MovieRecord `json:"movies"`
	ErrorKind  string               `json:"error_kind,omitempty"`
	Error      string               `json:"error,omitempty"`
	Generation uint64               `json:"generation"`
}

func (s ListingState) clone() ListingState {
	s.Movies = append([]models.MovieRecord(nil), s.Movies...)
	return s
}

// Window returns up to size page numbers around the current page.
func (s ListingState) Window(size int) []int {
	return PageWindow(s.Page, s.TotalPages, size)
}

// StateUpdate is published on every state transition.
type StateUpdate struct {
	State ListingState
}

// ListingController owns the query state of one listing surface and loads pages for it.
//
// Every load takes a new generation number. A response that comes back after a newer load
// has started is dropped.
type ListingController struct {
	mu         sync.Mutex
	catalog    services.Catalog
	normalizer *normalizer.Normalizer
	state      ListingState
	gen        uint64
	updates    chan<- StateUpdate
	logger     *log.Logger

	genreMu sync.Mutex
	genres  models.GenreLookup
}

// ListingOpts configures a [ListingController].
type ListingOpts struct {
	Normalizer *normalizer.Normalizer
	Updates    chan<- StateUpdate // optional, sends never block
	Logger     *log.Logger
	Category   models.Category
}

// NewListingController starts Idle on page 1 of the popular listing.
func NewListingController(catalog services.Catalog, opts ListingOpts) *ListingController {
	if opts.Normalizer == nil {
		opts.Normalizer = normalizer.New(shared.MediaConfig{})
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Category == "" {
		opts.Category = models.CategoryPopular
	}
	return &ListingController{
		catalog:    catalog,
		normalizer: opts.Normalizer,
		updates:    opts.Updates,
		logger:     opts.Logger,
		state: ListingState{
			Status:   StatusIdle,
			Category: opts.Category,
			Filters:  models.DefaultFilters(),
			Page:     1,
		},
	}
}

// State returns a copy of the current state.
func (c *ListingController) State() ListingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SetCategory switches to a category listing, clearing any query and resetting to page 1.
func (c *ListingController) SetCategory(ctx context.Context, category models.Category) (ListingState, error) {
	return c.change(ctx, func(s *ListingState) error {
		s.Category = category
		s.Query = ""
		s.Page = 1
		return nil
	})
}

// SetQuery starts a search. An empty or blank query is rejected without a request.
func (c *ListingController) SetQuery(ctx context.Context, query string) (ListingState, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.State(), shared.ErrEmptyQuery
	}
	return c.change(ctx, func(s *ListingState) error {
		s.Query = query
		s.Page = 1
		return nil
	})
}

// SetFilters replaces the whole filter set and resets to page 1.
func (c *ListingController) SetFilters(ctx context.Context, filters models.FilterState) (ListingState, error) {
	if filters.SortBy == "" {
		filters.SortBy = models.DefaultSort
	}
	return c.change(ctx, func(s *ListingState) error {
		s.Filters = filters
		s.Page = 1
		return nil
	})
}

// SetFilter changes one filter field and resets to page 1.
func (c *ListingController) SetFilter(ctx context.Context, field, value string) (ListingState, error) {
	lookup := c.genreLookup(ctx)
	c.mu.Lock()
	next, err := c.state.Filters.With(field, value, lookup)
	c.mu.Unlock()
	if err != nil {
		return c.State(), fmt.Errorf("%w: %v", shared.ErrInvalidFilter, err)
	}
	return c.SetFilters(ctx, next)
}

// ResetFilters restores the default filter set.
func (c *ListingController) ResetFilters(ctx context.Context) (ListingState, error) {
	return c.SetFilters(ctx, models.DefaultFilters())
}

// SetPage loads page p, clamped to the known page count. p < 1 is rejected.
func (c *ListingController) SetPage(ctx context.Context, p int) (ListingState, error) {
	if p < 1 {
		return c.State(), fmt.Errorf("%w: %d", shared.ErrInvalidPage, p)
	}
	return c.change(ctx, func(s *ListingState) error {
		if s.TotalPages > 0 && p > s.TotalPages {
			p = s.TotalPages
		}
		s.Page = p
		return nil
	})
}

// NextPage and PrevPage step within [1, TotalPages].
func (c *ListingController) NextPage(ctx context.Context) (ListingState, error) {
	return c.SetPage(ctx, c.State().Page+1)
}

func (c *ListingController) PrevPage(ctx context.Context) (ListingState, error) {
	p := c.State().Page - 1
	if p < 1 {
		p = 1
	}
	return c.SetPage(ctx, p)
}

// ListingQuery sets every input of a listing at once.
type ListingQuery struct {
	Category models.Category
	Query    string
	Filters  models.FilterState
	Page     int
}

// Load replaces the whole query and issues a single request.
//
// An empty category keeps the current one and a page below 1 loads page 1.
func (c *ListingController) Load(ctx context.Context, q ListingQuery) (ListingState, error) {
	if q.Filters.SortBy == "" {
		q.Filters.SortBy = models.DefaultSort
	}
	return c.change(ctx, func(s *ListingState) error {
		if q.Category != "" {
			s.Category = q.Category
		}
		s.Query = strings.TrimSpace(q.Query)
		s.Filters = q.Filters
		s.Page = max(q.Page, 1)
		return nil
	})
}

// Refresh reloads the current page.
func (c *ListingController) Refresh(ctx context.Context) (ListingState, error) {
	return c.change(ctx, func(*ListingState) error { return nil })
}

// Select fetches details for id and merges them into the listed record.
//
// A movie that is not on the current page is returned from its detail payload alone.
func (c *ListingController) Select(ctx context.Context, id int) (models.MovieRecord, error) {
	raw, err := c.catalog.FetchDetails(ctx, id)
	if err != nil {
		return models.MovieRecord{}, fmt.Errorf("load movie %d: %w", id, err)
	}
	detail := c.normalizer.Normalize(*raw, c.cachedGenres())

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, m := range c.state.Movies {
		if m.ID == id {
			merged := normalizer.MergeDetails(m, detail)
			c.state.Movies[i] = merged
			return merged, nil
		}
	}
	return detail, nil
}

// change applies mutate under the lock, then loads with a fresh generation.
func (c *ListingController) change(ctx context.Context, mutate func(*ListingState) error) (ListingState, error) {
	c.mu.Lock()
	if err := mutate(&c.state); err != nil {
		st := c.state.clone()
		c.mu.Unlock()
		return st, err
	}
	c.gen++
	gen := c.gen
	c.state.Mode = SelectMode(c.state.Query, c.state.Filters)
	c.state.Status = StatusLoading
	c.state.ErrorKind, c.state.Error = "", ""
	c.state.Generation = gen
	req := c.state.clone()
	c.mu.Unlock()

	c.publish(req)
	return c.load(ctx, gen, req)
}

func (c *ListingController) load(ctx context.Context, gen uint64, req ListingState) (ListingState, error) {
	lookup := c.genreLookup(ctx)
	page, err := c.fetch(ctx, req, lookup)

	c.mu.Lock()
	if gen != c.gen {
		st := c.state.clone()
		c.mu.Unlock()
		c.logger.Debug("dropping stale listing response", "generation", gen, "current", st.Generation)
		return st, ErrSuperseded
	}

	if err != nil {
		c.state.Status = StatusFailed
		c.state.ErrorKind = ErrorKindLoadFailed
		c.state.Error = MsgListingFailed
		if req.Mode == ModeSearch {
			c.state.Error = MsgSearchFailed
		}
		c.state.Movies = nil
		st := c.state.clone()
		c.mu.Unlock()

		c.logger.Error("listing load failed", "mode", req.Mode, "page", req.Page, "error", err)
		c.publish(st)
		return st, fmt.Errorf("load %s page %d: %w", req.Mode, req.Page, err)
	}

	c.state.Status = StatusReady
	c.state.Movies = c.normalizer.NormalizeAll(page.Results, lookup)
	c.state.TotalPages = max(page.TotalPages, 1)
	st := c.state.clone()
	c.mu.Unlock()

	c.publish(st)
	return st, nil
}

func (c *ListingController) fetch(ctx context.Context, req ListingState, lookup models.GenreLookup) (*models.RawListPage, error) {
	switch req.Mode {
	case ModeDiscover:
		params, err := req.Filters.DiscoverParams(req.Query, req.Page, lookup)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFilter, err)
		}
		return c.catalog.Discover(ctx, params)
	case ModeSearch:
		return c.catalog.Search(ctx, req.Query, req.Page)
	default:
		return c.catalog.FetchByCategory(ctx, req.Category, req.Page)
	}
}

// genreLookup fetches the genre table on first use. Failures and empty tables are logged and retried on the next load.
func (c *ListingController) genreLookup(ctx context.Context) models.GenreLookup {
	c.genreMu.Lock()
	defer c.genreMu.Unlock()
	if c.genres != nil {
		return c.genres
	}

	genres, err := c.catalog.FetchGenres(ctx)
	if err != nil {
		c.logger.Warn("genre lookup unavailable, showing raw ids", "error", err)
		return nil
	}
	lookup := models.NewGenreLookup(genres)
	if lookup == nil {
		c.logger.Warn("genre lookup empty, showing raw ids")
		return nil
	}
	c.genres = lookup
	return c.genres
}

func (c *ListingController) cachedGenres() models.GenreLookup {
	c.genreMu.Lock()
	defer c.genreMu.Unlock()
	return c.genres
}

// Genres returns the genre table, fetching it if needed.
func (c *ListingController) Genres(ctx context.Context) models.GenreLookup {
	return c.genreLookup(ctx)
}

// publish sends a state update without blocking.
func (c *ListingController) publish(st ListingState) {
	if c.updates == nil {
		return
	}
	select {
	case c.updates <- StateUpdate{State: st}:
	default:
	}
}

// PageWindow returns up to size consecutive page numbers containing current,
// kept inside [1, total].
func PageWindow(current, total, size int) []int {
	if total < 1 || size < 1 {
		return nil
	}
	current = min(max(current, 1), total)
	size = min(size, total)

	start := max(current-size/2, 1)
	end := start + size - 1
	if end > total {
		end = total
		start = end - size + 1
	}

	out := make([]int, 0, size)
	for p := start; p <= end; p++ {
		out = append(out, p)
	}
	return out
}
