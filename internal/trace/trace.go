// Package trace mirrors the engine's execution sequence to SQLite so slice
// history is available for offline analysis. It records audit history only;
// task state is never persisted.
package trace

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/schedq/internal/engine"
	"github.com/me/schedq/pkg/model"

	_ "modernc.org/sqlite"
)

// Recorder appends executed slices to a SQLite database.
type Recorder struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRecorder opens (or creates) the database at dbPath and ensures the
// schema exists. Use ":memory:" in tests.
func NewRecorder(dbPath string, logger *slog.Logger) (*Recorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// WAL keeps concurrent readers cheap while the loop appends.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS slices (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id     TEXT NOT NULL,
	start_time  REAL NOT NULL,
	end_time    REAL NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_slices_task ON slices(task_id);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate trace db: %w", err)
	}

	return &Recorder{
		db:     db,
		logger: logger.With("component", "trace"),
	}, nil
}

// Record appends one slice. It satisfies engine.TraceFunc; failures are
// logged rather than surfaced, so the loop never stalls on the recorder.
func (r *Recorder) Record(rec engine.SliceRecord) {
	_, err := r.db.Exec(
		`INSERT INTO slices (task_id, start_time, end_time, recorded_at) VALUES (?, ?, ?, ?)`,
		rec.TaskID, rec.Start.Seconds(), rec.End.Seconds(),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		r.logger.Warn("record slice", "task_id", rec.TaskID, "error", err)
	}
}

// Slices returns the recorded slices for a task in execution order. An empty
// taskID returns everything.
func (r *Recorder) Slices(taskID string) ([]model.SliceView, error) {
	query := `SELECT task_id, start_time, end_time FROM slices ORDER BY id`
	args := []any{}
	if taskID != "" {
		query = `SELECT task_id, start_time, end_time FROM slices WHERE task_id = ? ORDER BY id`
		args = append(args, taskID)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SliceView
	for rows.Next() {
		var sv model.SliceView
		if err := rows.Scan(&sv.TaskID, &sv.StartTime, &sv.EndTime); err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
