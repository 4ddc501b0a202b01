// Package storage provides the SQLite verdict cache.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/lightbot-arena/internal/lightbot/core"
	"github.com/vovakirdan/lightbot-arena/internal/lightbot/verify"
)

// Store manages the SQLite database connection for the verdict cache.
type Store struct {
	db *sql.DB
}

// VerdictEntry represents a single cached verdict.
type VerdictEntry struct {
	Fingerprint string
	LevelID     string
	Success     bool
	Reason      string
	Steps       int
	Hits        int
	CreatedAt   time.Time
}

// CacheStats contains aggregated statistics for the cache.
type CacheStats struct {
	Entries   int
	Successes int
	Hits      int64
	ByReason  map[string]int
	LastWrite time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS verdicts (
			fingerprint TEXT PRIMARY KEY,
			level_id TEXT NOT NULL,
			success INTEGER NOT NULL,
			reason TEXT NOT NULL,
			steps INTEGER NOT NULL DEFAULT 0,
			hits INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_verdicts_level_id ON verdicts(level_id);
		CREATE INDEX IF NOT EXISTS idx_verdicts_created_at ON verdicts(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveVerdict records a verdict. An existing entry for the same fingerprint
// keeps its hit count and creation time.
func (s *Store) SaveVerdict(ctx context.Context, e VerdictEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verdicts (fingerprint, level_id, success, reason, steps)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET
		   level_id = excluded.level_id,
		   success = excluded.success,
		   reason = excluded.reason,
		   steps = excluded.steps`,
		e.Fingerprint, e.LevelID, e.Success, e.Reason, e.Steps,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save verdict: %w", err)
	}
	return nil
}

// LookupVerdict retrieves a verdict by fingerprint and counts the hit.
// Returns nil if the fingerprint is unknown.
func (s *Store) LookupVerdict(ctx context.Context, fingerprint string) (*VerdictEntry, error) {
	var e VerdictEntry
	var createdAt any

	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint, level_id, success, reason, steps, hits, created_at
		 FROM verdicts
		 WHERE fingerprint = ?`,
		fingerprint,
	).Scan(&e.Fingerprint, &e.LevelID, &e.Success, &e.Reason, &e.Steps, &e.Hits, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query verdict: %w", err)
	}
	e.CreatedAt = parseTime(createdAt)

	if _, err := s.db.ExecContext(ctx,
		"UPDATE verdicts SET hits = hits + 1 WHERE fingerprint = ?", fingerprint,
	); err != nil {
		return nil, fmt.Errorf("storage: cannot count hit: %w", err)
	}
	e.Hits++

	return &e, nil
}

// RecentVerdicts retrieves the most recently stored verdicts.
func (s *Store) RecentVerdicts(limit int) ([]VerdictEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT fingerprint, level_id, success, reason, steps, hits, created_at
		 FROM verdicts
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query verdicts: %w", err)
	}
	defer rows.Close()

	var entries []VerdictEntry
	for rows.Next() {
		var e VerdictEntry
		var createdAt any
		if err := rows.Scan(&e.Fingerprint, &e.LevelID, &e.Success, &e.Reason, &e.Steps, &e.Hits, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// Stats retrieves aggregated statistics for the cache.
func (s *Store) Stats() (*CacheStats, error) {
	stats := &CacheStats{ByReason: make(map[string]int)}

	var lastWrite any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(success), 0), COALESCE(SUM(hits), 0), MAX(created_at)
		 FROM verdicts`,
	).Scan(&stats.Entries, &stats.Successes, &stats.Hits, &lastWrite)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get cache stats: %w", err)
	}
	stats.LastWrite = parseTime(lastWrite)

	rows, err := s.db.Query(`SELECT reason, COUNT(*) FROM verdicts GROUP BY reason`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot group verdicts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		stats.ByReason[reason] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// ClearVerdicts deletes every cached verdict and returns how many were removed.
func (s *Store) ClearVerdicts() (int64, error) {
	res, err := s.db.Exec("DELETE FROM verdicts")
	if err != nil {
		return 0, fmt.Errorf("storage: cannot clear verdicts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count deleted rows: %w", err)
	}
	return n, nil
}

// Lookup implements verify.Cache.
func (s *Store) Lookup(ctx context.Context, fingerprint string) (verify.Entry, bool, error) {
	e, err := s.LookupVerdict(ctx, fingerprint)
	if err != nil || e == nil {
		return verify.Entry{}, false, err
	}
	return verify.Entry{
		Fingerprint: e.Fingerprint,
		LevelID:     e.LevelID,
		Verdict:     core.Verdict{Success: e.Success, Reason: core.Reason(e.Reason)},
		Steps:       e.Steps,
	}, true, nil
}

// Store implements verify.Cache.
func (s *Store) Store(ctx context.Context, e verify.Entry) error {
	return s.SaveVerdict(ctx, VerdictEntry{
		Fingerprint: e.Fingerprint,
		LevelID:     e.LevelID,
		Success:     e.Verdict.Success,
		Reason:      string(e.Verdict.Reason),
		Steps:       e.Steps,
	})
}

// Ensure Store implements verify.Cache
var _ verify.Cache = (*Store)(nil)

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
