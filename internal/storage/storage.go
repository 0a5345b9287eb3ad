// Package storage persists small named snapshots (session, watchlist, favorites)
// behind one key/value interface with interchangeable backends.
//
// Writes are last-write-wins. Nothing coordinates two processes sharing one backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	json "github.com/goccy/go-json"

	"github.com/desertthunder/reelx/internal/shared"
)

// Snapshot keys.
const (
	KeySession   = "session"
	KeyWatchlist = "watchlist"
	KeyFavorites = "favorites"
)

var (
	ErrNotFound = errors.New("snapshot not found")
	ErrBackend  = shared.ErrStorage
)

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// Storage reads and writes opaque byte snapshots by key.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ValidateKey rejects keys that could escape a file backend's directory.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// GetJSON decodes the snapshot under key into v.
func GetJSON(ctx context.Context, s Storage, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s snapshot: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Storage, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
