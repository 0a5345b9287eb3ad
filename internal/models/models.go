// package models defines the data model for the movie discovery client
package models

import (
	"fmt"
	"strings"
	"time"
)

// Model is implemented by entities persisted in the local database.
type Model interface {
	GetID() string
	GetCreatedAt() time.Time
	Validate() error
}

// MovieRecord is the canonical movie every surface consumes.
//
// ID is the identity key for membership sets.
// Details is nil until a detail fetch has been merged in.
type MovieRecord struct {
	ID       int           `json:"id"`
	Title    string        `json:"title"`
	Year     string        `json:"year"`
	Genre    string        `json:"genre"`
	Rating   float64       `json:"rating"`
	Poster   string        `json:"poster"`
	Overview string        `json:"overview"`
	Details  *MovieDetails `json:"details,omitempty"`
}

// MovieDetails holds the fields only the detail endpoint provides.
type MovieDetails struct {
	Director string   `json:"director"`
	Cast     []string `json:"cast"`
	Runtime  string   `json:"runtime"`
	Backdrop string   `json:"backdrop"`
	Budget   string   `json:"budget"`
	Revenue  string   `json:"revenue"`
	Genres   string   `json:"genres"`
}

// HasDetails reports whether a detail payload has been merged.
func (m MovieRecord) HasDetails() bool { return m.Details != nil }

// Genre pairs a catalog genre id with its display name.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreLookup resolves genre ids to names.
type GenreLookup map[int]string

// NewGenreLookup indexes a fetched genre list. It returns nil when the list
// carries no named genres.
func NewGenreLookup(genres []Genre) GenreLookup {
	lookup := make(GenreLookup, len(genres))
	for _, g := range genres {
		if g.Name == "" {
			continue
		}
		lookup[g.ID] = g.Name
	}
	if len(lookup) == 0 {
		return nil
	}
	return lookup
}

// IDFor finds a genre id by case-insensitive name. When several ids share a
// name the smallest wins.
func (l GenreLookup) IDFor(name string) (int, bool) {
	best, found := 0, false
	for id, n := range l {
		if strings.EqualFold(n, name) && (!found || id < best) {
			best, found = id, true
		}
	}
	return best, found
}

// ActivityKind labels an entry of the recent activity feed.
type ActivityKind string

const (
	ActivityWatchlistAdd     ActivityKind = "watchlist.add"
	ActivityWatchlistRemove  ActivityKind = "watchlist.remove"
	ActivityFavoritesAdd     ActivityKind = "favorites.add"
	ActivityFavoritesRemove  ActivityKind = "favorites.remove"
	ActivityLogin            ActivityKind = "session.login"
	ActivityLogout           ActivityKind = "session.logout"
	ActivityRegister         ActivityKind = "session.register"
	ActivityCollectionExport ActivityKind = "collection.export"
)

// Activity is one row of the recent activity feed.
type Activity struct {
	ID        string       `json:"id"`
	Kind      ActivityKind `json:"kind"`
	MovieID   int          `json:"movie_id,omitempty"`
	Detail    string       `json:"detail,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

func (a *Activity) GetID() string           { return a.ID }
func (a *Activity) GetCreatedAt() time.Time { return a.CreatedAt }

// Validate rejects entries without a kind.
func (a *Activity) Validate() error {
	if a.Kind == "" {
		return fmt.Errorf("activity kind is required")
	}
	return nil
}

// String renders a single line for the activity listing.
func (a *Activity) String() string {
	s := a.CreatedAt.Local().Format("2006-01-02 15:04") + "  " + string(a.Kind)
	if a.MovieID != 0 {
		s += fmt.Sprintf("  #%d", a.MovieID)
	}
	if a.Detail != "" {
		s += "  " + a.Detail
	}
	return s
}
