// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuistream/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Timestamps are stored as unix milliseconds so ordering and range filters
// compare numbers, independent of zone offsets and fractional seconds.
func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			ended_at INTEGER NOT NULL,
			exercise TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			wpm REAL NOT NULL,
			content_path TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			correct INTEGER NOT NULL,
			wrong INTEGER NOT NULL,
			missed INTEGER NOT NULL,
			delivered INTEGER NOT NULL,
			rollbacks INTEGER NOT NULL,
			multiplier REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			timed_out INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_exercise ON sessions(exercise);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session. An empty ID is replaced with a new
// UUID, which is returned.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats) (string, error) {
	id := stats.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, exercise, difficulty, wpm, content_path, content_hash,
			correct, wrong, missed, delivered, rollbacks, multiplier, duration_ms, completed, timed_out)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		stats.StartedAt.UnixMilli(),
		stats.EndedAt.UnixMilli(),
		stats.Exercise,
		stats.Difficulty,
		stats.WPM,
		stats.ContentPath,
		stats.ContentHash,
		stats.Correct,
		stats.Wrong,
		stats.Missed,
		stats.Delivered,
		stats.Rollbacks,
		stats.Multiplier,
		stats.DurationMs,
		boolInt(stats.Completed),
		boolInt(stats.TimedOut),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListSessions returns session aggregates filtered by stats config.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Exercise != "" {
		clauses = append(clauses, "exercise = ?")
		args = append(args, cfg.Exercise)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UnixMilli())
	}
	query := fmt.Sprintf(`SELECT id, ended_at, exercise, difficulty, correct, wrong, missed, delivered,
			rollbacks, duration_ms, completed, timed_out
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt int64
		var completed, timedOut int
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Exercise, &agg.Difficulty, &agg.Correct, &agg.Wrong,
			&agg.Missed, &agg.Delivered, &agg.Rollbacks, &agg.DurationMs, &completed, &timedOut); err != nil {
			return nil, err
		}
		agg.EndedAt = time.UnixMilli(endedAt)
		agg.Completed = completed != 0
		agg.TimedOut = timedOut != 0
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
