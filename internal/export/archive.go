package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/airace/pkg/rank"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id         TEXT PRIMARY KEY,
    run_at     DATETIME NOT NULL,
    benchmarks TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS run_models (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id  TEXT NOT NULL REFERENCES runs(id),
    rank    INTEGER NOT NULL,
    name    TEXT NOT NULL,
    origin  TEXT NOT NULL,
    avg_iq  REAL NOT NULL,
    value   REAL NOT NULL,
    unified REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_models_run ON run_models(run_id);
CREATE INDEX IF NOT EXISTS idx_run_models_unified ON run_models(unified);
`

// Archive is an insert-only SQLite copy of scored runs, kept for ad-hoc
// querying. It is derived output: deleting the file loses nothing the
// history log doesn't already hold.
type Archive struct {
	db *sqlx.DB
}

// OpenArchive opens (and migrates) the archive database at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error { return a.db.Close() }

// RecordRun inserts one run and its scored models.
func (a *Archive) RecordRun(ctx context.Context, runID string, runAt time.Time, benchmarks []string, scored []rank.ScoredModel) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, run_at, benchmarks) VALUES (?, ?, ?)`,
		runID, runAt.UTC(), strings.Join(benchmarks, ","))
	if err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}

	for i := range scored {
		s := &scored[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_models (run_id, rank, name, origin, avg_iq, value, unified)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, runID, s.Rank, s.Name, s.Origin, s.AvgIQ, s.Value, s.Unified)
		if err != nil {
			return fmt.Errorf("insert run model %s: %w", s.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}
