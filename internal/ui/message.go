package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgListingLoaded MsgKind = iota
	MsgDetailsLoaded
	MsgToggled
)

type listingLoaded struct {
	state tasks.ListingState
	err   error
}

type detailsLoaded struct {
	movie models.MovieRecord
	err   error
}

type toggled struct {
	id    int
	added bool
	label string
	err   error
}

// listingLoadedMsg is the constructor for [MsgListingLoaded]
func listingLoadedMsg(state tasks.ListingState, err error) Msg {
	return Msg{kind: MsgListingLoaded, data: listingLoaded{state, err}}
}

// detailsLoadedMsg is the constructor for [MsgDetailsLoaded]
func detailsLoadedMsg(movie models.MovieRecord, err error) Msg {
	return Msg{kind: MsgDetailsLoaded, data: detailsLoaded{movie, err}}
}

// toggledMsg is the constructor for [MsgToggled]
func toggledMsg(id int, added bool, label string, err error) Msg {
	return Msg{kind: MsgToggled, data: toggled{id, added, label, err}}
}
