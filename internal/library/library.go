// Package library holds the user's watchlist and favorites.
//
// Both collections are ordered sets of movie ids. Every toggle persists the whole
// set under its fixed storage key before returning; a failed write leaves the
// in-memory set as it was.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/storage"
)

// Collection names a membership set.
type Collection string

const (
	Watchlist Collection = storage.KeyWatchlist
	Favorites Collection = storage.KeyFavorites
)

// ParseCollection accepts "watchlist" or "favorites".
func ParseCollection(s string) (Collection, error) {
	switch Collection(s) {
	case Watchlist, Favorites:
		return Collection(s), nil
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// Title is the display name of c.
func (c Collection) Title() string {
	if c == Favorites {
		return "Favorites"
	}
	return "Watchlist"
}

// ActivityKind labels a toggle of c for the activity feed.
func (c Collection) ActivityKind(added bool) models.ActivityKind {
	switch {
	case c == Favorites && added:
		return models.ActivityFavoritesAdd
	case c == Favorites:
		return models.ActivityFavoritesRemove
	case added:
		return models.ActivityWatchlistAdd
	default:
		return models.ActivityWatchlistRemove
	}
}

// idSet keeps insertion order alongside O(1) membership.
type idSet struct {
	order []int
	index map[int]struct{}
}

func newIDSet(ids []int) *idSet {
	s := &idSet{index: make(map[int]struct{}, len(ids))}
	for _, id := range ids {
		if _, dup := s.index[id]; dup {
			continue
		}
		s.index[id] = struct{}{}
		s.order = append(s.order, id)
	}
	return s
}

func (s *idSet) has(id int) bool {
	_, ok := s.index[id]
	return ok
}

// toggle flips membership and returns the new state.
func (s *idSet) toggle(id int) bool {
	if s.has(id) {
		delete(s.index, id)
		s.order = slices.DeleteFunc(s.order, func(v int) bool { return v == id })
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *idSet) ids() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// Store is the in-memory view of both collections backed by [storage.Storage].
type Store struct {
	mu     sync.RWMutex
	store  storage.Storage
	sets   map[Collection]*idSet
	logger *log.Logger
}

// Open hydrates both collections from st.
//
// Missing snapshots start empty. A snapshot that fails to decode is logged and treated as empty.
func Open(ctx context.Context, st storage.Storage, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Store{store: st, sets: make(map[Collection]*idSet, 2), logger: logger}

	for _, c := range []Collection{Watchlist, Favorites} {
		var ids []int
		err := storage.GetJSON(ctx, st, string(c), &ids)
		switch {
		case err == nil:
		case errors.Is(err, storage.ErrNotFound):
		case errors.Is(err, storage.ErrBackend), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("load %s: %w", c, err)
		default:
			logger.Warn("discarding unreadable snapshot", "collection", c, "error", err)
			ids = nil
		}
		s.sets[c] = newIDSet(ids)
	}
	return s, nil
}

// Toggle flips membership of id in c, persists, and returns the new membership.
func (s *Store) Toggle(ctx context.Context, c Collection, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[c]
	if !ok {
		return false, fmt.Errorf("unknown collection %q", c)
	}

	before := set.ids()
	member := set.toggle(id)
	if err := storage.SetJSON(ctx, s.store, string(c), set.ids()); err != nil {
		s.sets[c] = newIDSet(before)
		s.logger.Error("persist failed, toggle reverted", "collection", c, "movie", id, "error", err)
		return !member, fmt.Errorf("persist %s: %w", c, err)
	}
	return member, nil
}

// ToggleWatchlist flips watchlist membership of id.
func (s *Store) ToggleWatchlist(ctx context.Context, id int) (bool, error) {
	return s.Toggle(ctx, Watchlist, id)
}

// ToggleFavorite flips favorites membership of id.
func (s *Store) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	return s.Toggle(ctx, Favorites, id)
}

// Contains reports membership of id in c.
func (s *Store) Contains(c Collection, id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[c]
	return ok && set.has(id)
}

func (s *Store) IsInWatchlist(id int) bool { return s.Contains(Watchlist, id) }
func (s *Store) IsInFavorites(id int) bool { return s.Contains(Favorites, id) }

// IDs returns the ids of c in insertion order.
func (s *Store) IDs(c Collection) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if set, ok := s.sets[c]; ok {
		return set.ids()
	}
	return nil
}

func (s *Store) Watchlist() []int { return s.IDs(Watchlist) }
func (s *Store) Favorites() []int { return s.IDs(Favorites) }

// Flags is the membership of one movie in both collections.
type Flags struct {
	Watchlist bool `json:"in_watchlist"`
	Favorite  bool `json:"in_favorites"`
}

// FlagsFor reads both memberships under one lock.
func (s *Store) FlagsFor(id int) Flags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Flags{Watchlist: s.sets[Watchlist].has(id), Favorite: s.sets[Favorites].has(id)}
}
