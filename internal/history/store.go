// Package history persists orchestration results so past runs can be listed,
// inspected, and compared. Results live in a SQLite database; the most recent
// result is additionally mirrored to a latest.json file for quick scripting
// access, guarded by a cross-process file lock.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/foundry/internal/filelock"
	"github.com/harrison/foundry/internal/models"
	"github.com/harrison/foundry/internal/report"
)

//go:embed schema.sql
var schemaSQL string

// RunSummary is one row of the run listing.
type RunSummary struct {
	RunID       string
	Blueprint   string
	Status      string
	FailedLevel models.Level
	StartedAt   time.Time
	Duration    time.Duration
}

// Store manages the run-history database under a base directory.
type Store struct {
	db   *sql.DB
	base string
}

// NewStore opens (creating if needed) the history database under baseDir.
// Pass ":memory:" as baseDir for an ephemeral store in tests.
func NewStore(baseDir string) (*Store, error) {
	dbPath := ":memory:"
	if baseDir != ":memory:" {
		if err := os.MkdirAll(baseDir, 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
		dbPath = filepath.Join(baseDir, "history.db")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// busy_timeout first so later statements wait on locks instead of
	// failing when two runs finish at once.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db, base: baseDir}, nil
}

// execWithRetry executes a statement with backoff on lock contention.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save records a completed run and refreshes latest.json.
func (s *Store) Save(ctx context.Context, r *models.OrchestrationResult) error {
	data, err := report.MarshalResult(r)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, blueprint, status, failed_level, started_at, duration_ms, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Blueprint, r.Status, int(r.FailedLevel),
		r.StartedAt.UTC().Format(time.RFC3339Nano), r.Duration.Milliseconds(), string(data))
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.RunID, err)
	}

	return s.writeLatest(data)
}

// writeLatest mirrors the newest result to latest.json under the file lock.
func (s *Store) writeLatest(data []byte) error {
	if s.base == ":memory:" {
		return nil
	}
	guard := filelock.NewGuard(filepath.Join(s.base, "latest.lock"))
	return guard.WithLock(func() error {
		return filelock.ReplaceFile(filepath.Join(s.base, "latest.json"), data)
	})
}

// ListRuns returns run summaries, newest first, capped at limit (0 = all).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
		SELECT run_id, blueprint, status, failed_level, started_at, duration_ms
		FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			summary    RunSummary
			failed     int
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&summary.RunID, &summary.Blueprint, &summary.Status, &failed, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		summary.FailedLevel = models.Level(failed)
		summary.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			summary.StartedAt = t
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

// GetRun loads one full result by run ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*models.OrchestrationResult, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM runs WHERE run_id = ?`, runID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return report.UnmarshalResult([]byte(data))
}

// Latest loads the most recent result, or an error when no runs exist.
func (s *Store) Latest(ctx context.Context) (*models.OrchestrationResult, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no runs recorded")
	}
	if err != nil {
		return nil, fmt.Errorf("load latest run: %w", err)
	}
	return report.UnmarshalResult([]byte(data))
}

// Clear deletes all recorded runs and the latest.json mirror.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return fmt.Errorf("clear runs: %w", err)
	}
	if s.base != ":memory:" {
		if err := os.Remove(filepath.Join(s.base, "latest.json")); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove latest.json: %w", err)
		}
	}
	return nil
}
