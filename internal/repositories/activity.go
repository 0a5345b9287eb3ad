package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// DefaultActivityLimit bounds [ActivityRepository.Recent] when no limit is given.
const DefaultActivityLimit = 20

// ActivityRepository persists the recent activity feed.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new ActivityRepository with the given database connection
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Record inserts a with a generated ID and, if unset, the current time.
func (r *ActivityRepository) Record(ctx context.Context, a *models.Activity) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	if a.ID == "" {
		a.ID = shared.GenerateID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO activity (id, kind, movie_id, detail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	var movieID sql.NullInt64
	if a.MovieID != 0 {
		movieID = sql.NullInt64{Int64: int64(a.MovieID), Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query, a.ID, string(a.Kind), movieID, a.Detail, a.CreatedAt); err != nil {
		return dbErr("insert activity", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]*models.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	query := `
		SELECT id, kind, movie_id, detail, created_at
		FROM activity
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, dbErr("query activity", err)
	}
	defer rows.Close()

	var out []*models.Activity
	for rows.Next() {
		var (
			a       models.Activity
			kind    string
			movieID sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &kind, &movieID, &a.Detail, &a.CreatedAt); err != nil {
			return nil, dbErr("scan activity", err)
		}
		a.Kind = models.ActivityKind(kind)
		if movieID.Valid {
			a.MovieID = int(movieID.Int64)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("row iteration", err)
	}
	return out, nil
}

// Prune deletes entries older than before and reports how many went.
func (r *ActivityRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM activity WHERE created_at < ?`, before.UTC())
		if err != nil {
			return dbErr("prune activity", err)
		}
		n, err = res.RowsAffected()
		if err != nil {
			return dbErr("prune activity", err)
		}
		return nil
	})
	return n, err
}

// ActivityLog records activity without failing the action that triggered it.
//
// A nil *ActivityLog is valid and records nothing.
type ActivityLog struct {
	repo   *ActivityRepository
	logger *log.Logger
}

// NewActivityLog wraps repo. A nil logger discards warnings.
func NewActivityLog(repo *ActivityRepository, logger *log.Logger) *ActivityLog {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ActivityLog{repo: repo, logger: logger}
}

// Log records one entry. Failures are logged at warn level and otherwise ignored.
func (l *ActivityLog) Log(ctx context.Context, kind models.ActivityKind, movieID int, detail string) {
	if l == nil || l.repo == nil {
		return
	}
	a := &models.Activity{Kind: kind, MovieID: movieID, Detail: detail}
	if err := l.repo.Record(ctx, a); err != nil {
		l.logger.Warn("failed to record activity", "kind", kind, "error", err)
	}
}

// Recent proxies [ActivityRepository.Recent].
func (l *ActivityLog) Recent(ctx context.Context, limit int) ([]*models.Activity, error) {
	if l == nil || l.repo == nil {
		return nil, nil
	}
	return l.repo.Recent(ctx, limit)
}
