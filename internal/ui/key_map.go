package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	popular   key.Binding
	topRated  key.Binding
	upcoming  key.Binding
	search    key.Binding
	next      key.Binding
	prev      key.Binding
	genre     key.Binding
	year      key.Binding
	clear     key.Binding
	watchlist key.Binding
	favorite  key.Binding
	enter     key.Binding
	back      key.Binding
	refresh   key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		popular:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "popular")),
		topRated:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "top rated")),
		upcoming:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "upcoming")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		prev:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev page")),
		genre:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "genre")),
		year:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "year")),
		clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		watchlist: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watchlist")),
		favorite:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.next, k.prev, k.enter, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.popular, k.topRated, k.upcoming, k.search},
		{k.next, k.prev, k.genre, k.year, k.clear},
		{k.watchlist, k.favorite, k.enter, k.back},
		{k.refresh, k.quit},
	}
}
