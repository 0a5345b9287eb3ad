package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/reelx/internal/library"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/storage"
	tu "github.com/desertthunder/reelx/internal/testing"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return tu.MemoryDB(t)
}

func TestSnapshotRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Get missing key", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		_, err := repo.Get(ctx, storage.KeySession)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Set then Get", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		if err := repo.Set(ctx, storage.KeyWatchlist, []byte(`[1,2,3]`)); err != nil {
			t.Fatalf("failed to set snapshot: %v", err)
		}

		got, err := repo.Get(ctx, storage.KeyWatchlist)
		if err != nil {
			t.Fatalf("failed to get snapshot: %v", err)
		}
		if string(got) != `[1,2,3]` {
			t.Errorf("expected [1,2,3], got %s", got)
		}
	})

	t.Run("Set overwrites", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		_ = repo.Set(ctx, storage.KeyFavorites, []byte(`[1]`))
		first, err := repo.UpdatedAt(ctx, storage.KeyFavorites)
		if err != nil {
			t.Fatalf("failed to read timestamp: %v", err)
		}

		if err := repo.Set(ctx, storage.KeyFavorites, []byte(`[2]`)); err != nil {
			t.Fatalf("failed to overwrite snapshot: %v", err)
		}

		got, _ := repo.Get(ctx, storage.KeyFavorites)
		if string(got) != `[2]` {
			t.Errorf("expected [2], got %s", got)
		}

		second, _ := repo.UpdatedAt(ctx, storage.KeyFavorites)
		if second.Before(first) {
			t.Errorf("updated_at went backwards: %v then %v", first, second)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		_ = repo.Set(ctx, storage.KeySession, []byte(`{}`))
		if err := repo.Delete(ctx, storage.KeySession); err != nil {
			t.Fatalf("failed to delete snapshot: %v", err)
		}
		if _, err := repo.Get(ctx, storage.KeySession); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(ctx, storage.KeySession); err != nil {
			t.Errorf("deleting a missing key should succeed, got %v", err)
		}
	})

	t.Run("rejects unsafe keys", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		if err := repo.Set(ctx, "../etc", []byte(`x`)); err == nil {
			t.Error("expected invalid key error")
		}
	})

	t.Run("closed database is a storage failure", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSnapshotRepository(db)
		db.Close()

		if err := repo.Set(ctx, storage.KeyWatchlist, []byte(`[]`)); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("backs a library store across reopen", func(t *testing.T) {
		db := setupTestDB(t)

		store, err := library.Open(ctx, NewSnapshotRepository(db), nil)
		if err != nil {
			t.Fatalf("failed to open library: %v", err)
		}
		if _, err := store.ToggleFavorite(ctx, 550); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}

		reopened, err := library.Open(ctx, NewSnapshotRepository(db), nil)
		if err != nil {
			t.Fatalf("failed to reopen library: %v", err)
		}
		if !reopened.IsInFavorites(550) {
			t.Error("favorite did not survive reopen")
		}
	})
}

func TestActivityRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Record assigns id and timestamp", func(t *testing.T) {
		repo := NewActivityRepository(setupTestDB(t))

		a := &models.Activity{Kind: models.ActivityWatchlistAdd, MovieID: 27205}
		if err := repo.Record(ctx, a); err != nil {
			t.Fatalf("failed to record activity: %v", err)
		}
		if a.ID == "" {
			t.Error("activity ID should be set after record")
		}
		if a.CreatedAt.IsZero() {
			t.Error("activity CreatedAt should be set after record")
		}
	})

	t.Run("Record rejects empty kind", func(t *testing.T) {
		repo := NewActivityRepository(setupTestDB(t))

		if err := repo.Record(ctx, &models.Activity{}); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("Recent is newest first and limited", func(t *testing.T) {
		repo := NewActivityRepository(setupTestDB(t))

		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		kinds := []models.ActivityKind{models.ActivityLogin, models.ActivityWatchlistAdd, models.ActivityFavoritesAdd}
		for i, k := range kinds {
			a := &models.Activity{Kind: k, MovieID: i, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
			if err := repo.Record(ctx, a); err != nil {
				t.Fatalf("failed to record activity: %v", err)
			}
		}

		got, err := repo.Recent(ctx, 2)
		if err != nil {
			t.Fatalf("failed to list activity: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(got))
		}
		if got[0].Kind != models.ActivityFavoritesAdd || got[1].Kind != models.ActivityWatchlistAdd {
			t.Errorf("unexpected order: %s, %s", got[0].Kind, got[1].Kind)
		}
		if got[0].MovieID != 2 {
			t.Errorf("expected movie id 2, got %d", got[0].MovieID)
		}
	})

	t.Run("entries without a movie", func(t *testing.T) {
		repo := NewActivityRepository(setupTestDB(t))

		_ = repo.Record(ctx, &models.Activity{Kind: models.ActivityLogout, Detail: "ada@example.com"})
		got, err := repo.Recent(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list activity: %v", err)
		}
		if len(got) != 1 || got[0].MovieID != 0 || got[0].Detail != "ada@example.com" {
			t.Errorf("unexpected entries: %+v", got)
		}
	})

	t.Run("Prune", func(t *testing.T) {
		repo := NewActivityRepository(setupTestDB(t))

		old := time.Now().Add(-48 * time.Hour).UTC()
		_ = repo.Record(ctx, &models.Activity{Kind: models.ActivityLogin, CreatedAt: old})
		_ = repo.Record(ctx, &models.Activity{Kind: models.ActivityLogout})

		n, err := repo.Prune(ctx, time.Now().Add(-24*time.Hour))
		if err != nil {
			t.Fatalf("prune failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 pruned entry, got %d", n)
		}

		left, _ := repo.Recent(ctx, 10)
		if len(left) != 1 || left[0].Kind != models.ActivityLogout {
			t.Errorf("unexpected remaining entries: %+v", left)
		}
	})
}

func TestActivityLog(t *testing.T) {
	ctx := context.Background()

	t.Run("nil log is a no-op", func(t *testing.T) {
		var l *ActivityLog
		l.Log(ctx, models.ActivityLogin, 0, "")
		got, err := l.Recent(ctx, 5)
		if err != nil || got != nil {
			t.Errorf("expected nil, nil; got %v, %v", got, err)
		}
	})

	t.Run("swallows write failures", func(t *testing.T) {
		db := setupTestDB(t)
		l := NewActivityLog(NewActivityRepository(db), nil)
		db.Close()

		l.Log(ctx, models.ActivityWatchlistAdd, 1, "")
	})

	t.Run("records entries", func(t *testing.T) {
		l := NewActivityLog(NewActivityRepository(setupTestDB(t)), nil)
		l.Log(ctx, models.ActivityCollectionExport, 0, "watchlist.csv")

		got, err := l.Recent(ctx, 5)
		if err != nil {
			t.Fatalf("failed to list activity: %v", err)
		}
		if len(got) != 1 || got[0].Kind != models.ActivityCollectionExport {
			t.Errorf("unexpected entries: %+v", got)
		}
	})
}
