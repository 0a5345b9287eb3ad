package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/reelx/internal/library"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/repositories"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListingView ViewState = iota
	SearchView
	DetailView
)

const windowSize = 5

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	ctrl     *tasks.ListingController
	library  *library.Store
	activity *repositories.ActivityLog
	width    int
	height   int
	movies   list.Model
	input    textinput.Model
	state    tasks.ListingState
	detail   *models.MovieRecord
	loading  bool
	status   string
	genreIdx int
	yearIdx  int
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies. lib and activity may be nil.
func NewModel(ctx context.Context, ctrl *tasks.ListingController, lib *library.Store, activity *repositories.ActivityLog) *Model {
	input := textinput.New()
	input.Placeholder = "Search movies..."
	input.CharLimit = 100

	movies := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	movies.SetFilteringEnabled(false)
	movies.SetShowHelp(false)
	movies.DisableQuitKeybindings()

	return &Model{
		ctx:      ctx,
		view:     ListingView,
		ctrl:     ctrl,
		library:  lib,
		activity: activity,
		movies:   movies,
		input:    input,
		state:    ctrl.State(),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init loads the first page of the starting category.
func (m *Model) Init() tea.Cmd {
	return m.load(m.ctrl.Refresh)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.movies.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		default:
			return m.handleListingKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.movies, cmd = m.movies.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgListingLoaded:
		data := msg.data.(listingLoaded)
		if errors.Is(data.err, tasks.ErrSuperseded) {
			return m, nil
		}
		m.loading = false
		m.state = data.state
		m.status = ""
		if data.err != nil {
			m.status = data.state.Error
			if m.status == "" {
				m.status = shared.UserMessage(data.err)
			}
		}
		return m, m.syncItems()

	case MsgDetailsLoaded:
		data := msg.data.(detailsLoaded)
		m.loading = false
		if data.err != nil {
			m.status = "Failed to load movie details: " + shared.UserMessage(data.err)
			return m, nil
		}
		m.detail = &data.movie
		m.view = DetailView
		m.state = m.ctrl.State()
		return m, m.syncItems()

	case MsgToggled:
		data := msg.data.(toggled)
		if data.err != nil {
			m.status = fmt.Sprintf("Could not update %s: %s", data.label, shared.UserMessage(data.err))
			return m, nil
		}
		if data.added {
			m.status = "Added to " + data.label
		} else {
			m.status = "Removed from " + data.label
		}
		return m, m.syncItems()
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case DetailView:
		return m.renderDetail()
	default:
		return m.renderListing()
	}
}

func (m *Model) handleListingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.popular):
		return m, m.category(models.CategoryPopular)
	case key.Matches(msg, m.keys.topRated):
		return m, m.category(models.CategoryTopRated)
	case key.Matches(msg, m.keys.upcoming):
		return m, m.category(models.CategoryUpcoming)
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		m.input.SetValue(m.state.Query)
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.next):
		if m.state.Page >= m.state.TotalPages {
			return m, nil
		}
		return m, m.load(m.ctrl.NextPage)
	case key.Matches(msg, m.keys.prev):
		if m.state.Page <= 1 {
			return m, nil
		}
		return m, m.load(m.ctrl.PrevPage)
	case key.Matches(msg, m.keys.genre):
		m.genreIdx = (m.genreIdx + 1) % (len(models.StaticGenres) + 1)
		return m, m.filter(models.FilterGenre, genreOption(m.genreIdx))
	case key.Matches(msg, m.keys.year):
		m.yearIdx = (m.yearIdx + 1) % (len(models.FilterYears) + 1)
		return m, m.filter(models.FilterYear, yearOption(m.yearIdx))
	case key.Matches(msg, m.keys.clear):
		m.genreIdx, m.yearIdx = 0, 0
		return m, m.load(m.ctrl.ResetFilters)
	case key.Matches(msg, m.keys.refresh):
		return m, m.load(m.ctrl.Refresh)
	case key.Matches(msg, m.keys.watchlist):
		return m, m.toggle(library.Watchlist)
	case key.Matches(msg, m.keys.favorite):
		return m, m.toggle(library.Favorites)
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.movies.SelectedItem().(movieItem); ok {
			return m, m.details(item.movie.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.movies, cmd = m.movies.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		m.view = ListingView
		return m, nil
	case "enter":
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			m.status = "Enter a search term"
			return m, nil
		}
		m.input.Blur()
		m.view = ListingView
		return m, m.load(func(ctx context.Context) (tasks.ListingState, error) {
			return m.ctrl.SetQuery(ctx, query)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListingView
		m.detail = nil
		return m, nil
	case key.Matches(msg, m.keys.watchlist) && m.detail != nil:
		return m, m.toggleID(library.Watchlist, m.detail.ID)
	case key.Matches(msg, m.keys.favorite) && m.detail != nil:
		return m, m.toggleID(library.Favorites, m.detail.ID)
	}
	return m, nil
}

func (m *Model) load(fn func(context.Context) (tasks.ListingState, error)) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		st, err := fn(m.ctx)
		return listingLoadedMsg(st, err)
	}
}

func (m *Model) category(c models.Category) tea.Cmd {
	return m.load(func(ctx context.Context) (tasks.ListingState, error) {
		return m.ctrl.SetCategory(ctx, c)
	})
}

func (m *Model) filter(field, value string) tea.Cmd {
	return m.load(func(ctx context.Context) (tasks.ListingState, error) {
		return m.ctrl.SetFilter(ctx, field, value)
	})
}

func (m *Model) details(id int) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		rec, err := m.ctrl.Select(m.ctx, id)
		return detailsLoadedMsg(rec, err)
	}
}

func (m *Model) toggle(c library.Collection) tea.Cmd {
	item, ok := m.movies.SelectedItem().(movieItem)
	if !ok {
		return nil
	}
	return m.toggleID(c, item.movie.ID)
}

func (m *Model) toggleID(c library.Collection, id int) tea.Cmd {
	if m.library == nil {
		m.status = "Collections are unavailable"
		return nil
	}
	return func() tea.Msg {
		added, err := m.library.Toggle(m.ctx, c, id)
		if err == nil {
			m.activity.Log(m.ctx, c.ActivityKind(added), id, "")
		}
		return toggledMsg(id, added, string(c), err)
	}
}

func (m *Model) flags(id int) library.Flags {
	if m.library == nil {
		return library.Flags{}
	}
	return m.library.FlagsFor(id)
}

func (m *Model) syncItems() tea.Cmd {
	items := make([]list.Item, len(m.state.Movies))
	for i, mv := range m.state.Movies {
		items[i] = movieItem{movie: mv, flags: m.flags(mv.ID)}
	}
	m.movies.Title = heading(m.state)
	return m.movies.SetItems(items)
}

func heading(st tasks.ListingState) string {
	switch st.Mode {
	case tasks.ModeSearch:
		return fmt.Sprintf("Results for %q", st.Query)
	case tasks.ModeDiscover:
		return "Discover"
	default:
		return st.Category.Title()
	}
}

func genreOption(i int) string {
	if i == 0 {
		return "All"
	}
	return models.StaticGenres[i-1].Name
}

func yearOption(i int) string {
	if i == 0 {
		return "All"
	}
	return models.FilterYears[i-1]
}


func (m *Model) renderListing() string {
	var b strings.Builder

	b.WriteString(m.movies.View())
	b.WriteString("\n")

	pages := make([]string, 0, windowSize)
	for _, p := range m.state.Window(windowSize) {
		if p == m.state.Page {
			pages = append(pages, styles.page.Render(fmt.Sprintf("[%d]", p)))
			continue
		}
		pages = append(pages, fmt.Sprintf("%d", p))
	}
	fmt.Fprintf(&b, "Page %d of %d  %s\n", m.state.Page, max(m.state.TotalPages, 1), strings.Join(pages, " "))

	if !m.state.Filters.IsDefault() {
		f := m.state.Filters
		b.WriteString(styles.label.Render("Filters: "))
		fmt.Fprintf(&b, "genre=%s year=%s rating=%s sort=%s\n", orAll(f.Genre), orAll(f.Year), orAll(f.Rating), f.SortBy)
	}

	switch {
	case m.loading:
		b.WriteString(styles.help.Render("Loading..."))
	case m.state.Status == tasks.StatusFailed:
		b.WriteString(styles.err.Render(m.state.Error))
	case m.status != "":
		b.WriteString(styles.warn.Render(m.status))
	case m.state.Status == tasks.StatusReady && len(m.state.Movies) == 0:
		b.WriteString(styles.help.Render("No movies found"))
	}

	fmt.Fprintf(&b, "\n\n%s", m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func orAll(s string) string {
	if s == "" {
		return "All"
	}
	return s
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Search")
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		m.keys.back,
	})
	out := fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), helpView)
	if m.status != "" {
		out += "\n" + styles.warn.Render(m.status)
	}
	return out
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return styles.err.Render("No movie selected\n\nPress esc to go back")
	}
	mv := m.detail
	flags := m.flags(mv.ID)

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("%s (%s)", mv.Title, mv.Year)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  •  %s\n\n", styles.rating(mv.Rating), mv.Genre)
	if mv.Overview != "" {
		fmt.Fprintf(&b, "%s\n\n", mv.Overview)
	}
	if d := mv.Details; d != nil {
		row := func(label, value string) {
			fmt.Fprintf(&b, "%s %s\n", styles.label.Render(label+":"), value)
		}
		row("Director", d.Director)
		row("Cast", strings.Join(d.Cast, ", "))
		row("Runtime", d.Runtime)
		row("Budget", d.Budget)
		row("Revenue", d.Revenue)
		b.WriteString("\n")
	}

	if flags.Watchlist {
		b.WriteString(styles.marked.Render("◉ In watchlist") + "  ")
	}
	if flags.Favorite {
		b.WriteString(styles.marked.Render("♥ Favorite"))
	}
	if m.status != "" {
		b.WriteString("\n" + styles.warn.Render(m.status))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.watchlist, m.keys.favorite, m.keys.back, m.keys.quit})
	fmt.Fprintf(&b, "\n\n%s", helpView)
	return b.String()
}
