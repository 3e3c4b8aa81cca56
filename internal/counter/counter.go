// Package counter accumulates per-day character counts and triggers
// periodic flushes to durable storage.
package counter

import (
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/keytally/internal/classify"
	"github.com/verte-zerg/keytally/internal/metrics"
	"github.com/verte-zerg/keytally/internal/model"
)

// DefaultFlushEvery is how many counted keys pass between flushes when no
// interval is configured.
const DefaultFlushEvery = 100

// Flush is the copied counter state handed to the flush callback. Day is
// the date the counts belong to, which differs from "today" exactly once
// per rollover.
type Flush struct {
	Day       string
	ScriptA   int64
	ScriptB   int64
	TotalKeys int64
}

// FlushFunc receives flush snapshots. It is always invoked outside the
// counter lock, on the goroutine that recorded the triggering key.
type FlushFunc func(Flush)

// Options configures a Counter.
type Options struct {
	Classifier *classify.Classifier
	FlushEvery int64
	Flush      FlushFunc
	// AutoRollover flushes and resets the counters when the calendar day
	// changes under a running session.
	AutoRollover bool
	Clock        func() time.Time
	Logger       *slog.Logger
}

// Counter is the single owner of the running per-day counters. All state
// is guarded by one mutex; the flush callback runs outside it so slow
// persistence cannot stall key ingestion.
type Counter struct {
	classifier   *classify.Classifier
	flushEvery   int64
	flush        FlushFunc
	autoRollover bool
	clock        func() time.Time
	logger       *slog.Logger

	mu        sync.Mutex
	day       string
	scriptA   int64
	scriptB   int64
	totalKeys int64
	active    bool
	startedAt time.Time
}

// New builds a Counter. Zero or negative FlushEvery falls back to
// DefaultFlushEvery; a nil clock uses time.Now.
func New(opts Options) *Counter {
	if opts.Classifier == nil {
		opts.Classifier = classify.Default()
	}
	if opts.FlushEvery <= 0 {
		opts.FlushEvery = DefaultFlushEvery
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	c := &Counter{
		classifier:   opts.Classifier,
		flushEvery:   opts.FlushEvery,
		flush:        opts.Flush,
		autoRollover: opts.AutoRollover,
		clock:        opts.Clock,
		logger:       opts.Logger,
	}
	c.day = model.Day(c.clock())
	return c
}

// RecordKey counts one raw key event. Events without a resolved character
// are ignored. When the running key total reaches a multiple of the flush
// interval the flush callback fires with a copy of the current counts.
func (c *Counter) RecordKey(ev model.KeyEvent) {
	if !ev.HasChar {
		return
	}
	cat := c.classifier.Rune(ev.Char)
	metrics.KeysTotal.WithLabelValues(cat.String()).Inc()

	var due []Flush
	c.mu.Lock()
	if rolled, ok := c.rollDayLocked(); ok {
		due = append(due, rolled)
	}
	c.totalKeys++
	switch cat {
	case classify.ScriptA:
		c.scriptA++
	case classify.ScriptB:
		c.scriptB++
	}
	if c.totalKeys%c.flushEvery == 0 {
		due = append(due, c.flushLocked())
	}
	c.mu.Unlock()

	c.dispatch(due)
}

// rollDayLocked resets the counters at a date change, returning the final
// flush for the day that just ended. Callers hold c.mu.
func (c *Counter) rollDayLocked() (Flush, bool) {
	if !c.autoRollover {
		return Flush{}, false
	}
	today := model.Day(c.clock())
	if today == c.day {
		return Flush{}, false
	}
	final := c.flushLocked()
	c.logger.Info("day rolled over",
		"previous_day", c.day,
		"script_a", c.scriptA,
		"script_b", c.scriptB,
		"total_keys", c.totalKeys)
	c.day = today
	c.scriptA = 0
	c.scriptB = 0
	c.totalKeys = 0
	return final, true
}

func (c *Counter) flushLocked() Flush {
	return Flush{
		Day:       c.day,
		ScriptA:   c.scriptA,
		ScriptB:   c.scriptB,
		TotalKeys: c.totalKeys,
	}
}

func (c *Counter) dispatch(due []Flush) {
	if c.flush == nil {
		return
	}
	for _, f := range due {
		c.flush(f)
	}
}

// ForceFlush invokes the flush callback immediately with the current
// counts, regardless of the interval position.
func (c *Counter) ForceFlush() {
	c.mu.Lock()
	f := c.flushLocked()
	c.mu.Unlock()
	c.dispatch([]Flush{f})
}

// Snapshot returns a consistent copy of the counters.
func (c *Counter) Snapshot() model.Snapshot {
	now := c.clock()
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := model.Snapshot{
		Day:        c.day,
		ScriptA:    c.scriptA,
		ScriptB:    c.scriptB,
		TotalChars: c.scriptA + c.scriptB,
		TotalKeys:  c.totalKeys,
		Listening:  c.active,
		StartedAt:  c.startedAt,
	}
	if c.active {
		snap.Uptime = now.Sub(c.startedAt)
	}
	return snap
}

// ResetDaily zeroes all counters, logging the discarded values.
func (c *Counter) ResetDaily() {
	c.mu.Lock()
	prevA, prevB, prevKeys := c.scriptA, c.scriptB, c.totalKeys
	c.scriptA = 0
	c.scriptB = 0
	c.totalKeys = 0
	c.day = model.Day(c.clock())
	c.mu.Unlock()

	c.logger.Info("daily counters reset",
		"script_a", prevA,
		"script_b", prevB,
		"total_keys", prevKeys)
}

// StartSession marks the counters as belonging to an active listening
// session starting now.
func (c *Counter) StartSession() {
	now := c.clock()
	c.mu.Lock()
	c.active = true
	c.startedAt = now
	c.mu.Unlock()
}

// EndSession clears the active flag and returns the session duration.
func (c *Counter) EndSession() time.Duration {
	now := c.clock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	if c.startedAt.IsZero() {
		return 0
	}
	return now.Sub(c.startedAt)
}
