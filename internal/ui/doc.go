// Package ui implements an interactive movie browser using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [ListingView] : a page of movies for a category, search or filter set
//  2. [SearchView] : a text input for a search query
//  3. [DetailView] : one movie with its detail-only fields
//
// All catalog calls run as [tea.Cmd] values through a tasks.ListingController, so a slow
// page can never overwrite a newer one: superseded loads are dropped when their message arrives.
//
// Keys: 1/2/3 switch category, / searches, n/p page, g and y cycle the genre and year filters,
// c clears filters, w/f toggle watchlist and favorites, enter opens details, esc goes back, q quits.
package ui
