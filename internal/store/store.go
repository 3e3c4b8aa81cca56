// Package store handles SQLite persistence of daily counts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/keytally/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for daily stat rows. Every method is a single
// logical transaction; the driver serializes per-row writes.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	clock  func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	store := &Store{db: db, logger: logger, clock: time.Now}
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

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_stats (
			date TEXT PRIMARY KEY,
			script_a_count INTEGER NOT NULL DEFAULT 0,
			script_b_count INTEGER NOT NULL DEFAULT 0,
			total_chars INTEGER NOT NULL DEFAULT 0,
			total_keys INTEGER,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_daily_stats_updated_at ON daily_stats(updated_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Upsert writes the full cumulative counts for a date. An existing row is
// replaced wholesale, not incremented: callers always pass running totals,
// so last-write-wins keeps the row correct. created_at survives updates;
// updated_at is refreshed on every write.
func (s *Store) Upsert(ctx context.Context, date string, scriptA, scriptB int64, totalKeys *int64) error {
	totalChars := scriptA + scriptB
	now := s.clock().Format(time.RFC3339Nano)
	var keys sql.NullInt64
	if totalKeys != nil {
		keys = sql.NullInt64{Int64: *totalKeys, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_stats (date, script_a_count, script_b_count, total_chars, total_keys, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			script_a_count = excluded.script_a_count,
			script_b_count = excluded.script_b_count,
			total_chars = excluded.total_chars,
			total_keys = excluded.total_keys,
			updated_at = excluded.updated_at`,
		date, scriptA, scriptB, totalChars, keys, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", date, err)
	}
	return nil
}

const statColumns = `date, script_a_count, script_b_count, total_chars, total_keys, created_at, updated_at`

// Get returns the row for a date, or nil when no row exists. An absent
// date is not an error.
func (s *Store) Get(ctx context.Context, date string) (*model.DailyStat, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+statColumns+` FROM daily_stats WHERE date = ?`, date)
	stat, err := scanStat(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", date, err)
	}
	return &stat, nil
}

// Recent returns up to n rows ordered by date descending.
func (s *Store) Recent(ctx context.Context, n int) ([]model.DailyStat, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+statColumns+` FROM daily_stats ORDER BY date DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	return collectStats(rows)
}

// All returns every row ordered by date descending.
func (s *Store) All(ctx context.Context) ([]model.DailyStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+statColumns+` FROM daily_stats ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("all: %w", err)
	}
	return collectStats(rows)
}

// Delete removes the row for a date. The boolean reports whether a row
// existed; a missing row is failure, not an error.
func (s *Store) Delete(ctx context.Context, date string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM daily_stats WHERE date = ?`, date)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", date, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", date, err)
	}
	if affected == 0 {
		s.logger.Warn("no stats to delete", "date", date)
		return false, nil
	}
	s.logger.Info("deleted daily stats", "date", date)
	return true, nil
}

// Summary aggregates across all rows. An empty store yields zero counts
// and empty date fields.
func (s *Store) Summary(ctx context.Context) (model.Summary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(SUM(script_a_count), 0),
		COALESCE(SUM(script_b_count), 0),
		COALESCE(SUM(total_chars), 0),
		COALESCE(SUM(total_keys), 0),
		COALESCE(AVG(script_a_count), 0),
		COALESCE(AVG(script_b_count), 0),
		COALESCE(MIN(date), ''),
		COALESCE(MAX(date), '')
		FROM daily_stats`)
	var sum model.Summary
	err := row.Scan(
		&sum.Days,
		&sum.TotalScriptA,
		&sum.TotalScriptB,
		&sum.TotalChars,
		&sum.TotalKeys,
		&sum.AvgScriptA,
		&sum.AvgScriptB,
		&sum.FirstDate,
		&sum.LastDate,
	)
	if err != nil {
		return model.Summary{}, fmt.Errorf("summary: %w", err)
	}
	sum.AvgScriptA = roundTenth(sum.AvgScriptA)
	sum.AvgScriptB = roundTenth(sum.AvgScriptB)
	return sum, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func scanStat(scan func(dest ...any) error) (model.DailyStat, error) {
	var stat model.DailyStat
	var keys sql.NullInt64
	var createdAt, updatedAt string
	err := scan(&stat.Date, &stat.ScriptA, &stat.ScriptB, &stat.TotalChars, &keys, &createdAt, &updatedAt)
	if err != nil {
		return model.DailyStat{}, err
	}
	if keys.Valid {
		k := keys.Int64
		stat.TotalKeys = &k
	}
	if stat.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return model.DailyStat{}, err
	}
	if stat.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return model.DailyStat{}, err
	}
	return stat, nil
}

func collectStats(rows *sql.Rows) ([]model.DailyStat, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var stats []model.DailyStat
	for rows.Next() {
		stat, err := scanStat(rows.Scan)
		if err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
