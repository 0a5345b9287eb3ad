package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/desertthunder/reelx/internal/storage"
)

// SnapshotRepository stores named snapshots in the snapshots table.
//
// It implements [storage.Storage]. Close is a no-op; the caller owns the *sql.DB.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Get returns the stored value or [storage.ErrNotFound].
func (r *SnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, dbErr("get snapshot "+key, err)
	}
	return value, nil
}

// Set upserts the value for key.
func (r *SnapshotRepository) Set(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}

	query := `
		INSERT INTO snapshots (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return dbErr("set snapshot "+key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return dbErr("delete snapshot "+key, err)
	}
	return nil
}

// UpdatedAt reports when key was last written.
func (r *SnapshotRepository) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var at time.Time
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM snapshots WHERE key = ?`, key).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, storage.ErrNotFound
	}
	if err != nil {
		return time.Time{}, dbErr("snapshot timestamp "+key, err)
	}
	return at, nil
}

// Close is a no-op.
func (r *SnapshotRepository) Close() error { return nil }

var _ storage.Storage = (*SnapshotRepository)(nil)
