// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// DayFormat is the canonical date-key layout used everywhere a calendar
// date identifies a row.
const DayFormat = "2006-01-02"

// Day formats a time as a canonical date key.
func Day(t time.Time) string {
	return t.Format(DayFormat)
}

// ParseDay validates a canonical YYYY-MM-DD date key. Free-form dates are
// rejected here, at the boundary, so the store only ever sees valid keys.
func ParseDay(s string) (string, error) {
	t, err := time.ParseInLocation(DayFormat, s, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t.Format(DayFormat), nil
}

// KeyEvent is one raw key-down event delivered by an input source. Keys
// that do not resolve to a character (modifiers, function keys) carry
// HasChar=false and are ignored by the counters.
type KeyEvent struct {
	Char    rune
	HasChar bool
}

// DailyStat is one persisted row of per-day counts. TotalKeys is nil when
// the writer did not supply a key total for that day.
type DailyStat struct {
	Date       string
	ScriptA    int64
	ScriptB    int64
	TotalChars int64
	TotalKeys  *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Snapshot is a consistent point-in-time copy of the in-memory counters.
type Snapshot struct {
	Day        string
	ScriptA    int64
	ScriptB    int64
	TotalChars int64
	TotalKeys  int64
	Listening  bool
	StartedAt  time.Time
	Uptime     time.Duration
}

// Summary aggregates every persisted day. FirstDate/LastDate are empty
// strings when the store holds no rows.
type Summary struct {
	Days         int64
	TotalScriptA int64
	TotalScriptB int64
	TotalChars   int64
	TotalKeys    int64
	AvgScriptA   float64
	AvgScriptB   float64
	FirstDate    string
	LastDate     string
}
