// Package sqlite provides SQLite-based persistent storage for KeepWell.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/keepwell-care/keepwell/internal/domain"
)

// DB wraps a SQLite connection with WAL mode and migrations. It
// implements domain.ScoreSource, domain.ScoreRecorder and
// domain.BadgeStore.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Daily self-reported wellbeing scores. One row per user per
		// calendar day; resubmission replaces the row.
		`CREATE TABLE IF NOT EXISTS daily_scores (
			user_id          TEXT NOT NULL,
			score_date       TEXT NOT NULL,
			diet_score       INTEGER NOT NULL,
			exercise_score   INTEGER NOT NULL,
			medication_score INTEGER NOT NULL,
			recorded_at      INTEGER NOT NULL,
			PRIMARY KEY (user_id, score_date)
		)`,

		// Earned badges. The UNIQUE constraint is the exactly-once
		// guard against concurrent award attempts.
		`CREATE TABLE IF NOT EXISTS badges (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			category   TEXT NOT NULL,
			tier       TEXT NOT NULL,
			awarded_at INTEGER NOT NULL,
			UNIQUE (user_id, category, tier)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_badges_awarded ON badges(awarded_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// dateLayout is how score dates are stored: a UTC calendar day.
const dateLayout = "2006-01-02"

// wrapStorage classifies an error as a storage availability failure so
// callers can match it with errors.Is(err, domain.ErrStorageUnavailable).
func wrapStorage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}
