// Package tracker wires the listener, counters, and store into one
// tracking session.
package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/verte-zerg/keytally/internal/classify"
	"github.com/verte-zerg/keytally/internal/counter"
	"github.com/verte-zerg/keytally/internal/listener"
	"github.com/verte-zerg/keytally/internal/metrics"
	"github.com/verte-zerg/keytally/internal/model"
	"github.com/verte-zerg/keytally/internal/store"
)

// flushTimeout bounds a single persistence attempt. A failed attempt is
// retried implicitly by the next flush, which carries the larger
// cumulative totals.
const flushTimeout = 10 * time.Second

// Options configures a Tracker.
type Options struct {
	Source       listener.Source
	Store        *store.Store
	Classifier   *classify.Classifier
	FlushEvery   int64
	AutoRollover bool
	Logger       *slog.Logger
}

// Tracker owns one listener and one store and connects the counter's
// flush path to durable upserts. At most one session is active at a time;
// a second Start fails without touching the running session.
type Tracker struct {
	store    *store.Store
	counter  *counter.Counter
	listener *listener.Listener
	logger   *slog.Logger
}

// New builds a tracker from its collaborators.
func New(opts Options) *Tracker {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	t := &Tracker{store: opts.Store, logger: opts.Logger}
	t.counter = counter.New(counter.Options{
		Classifier:   opts.Classifier,
		FlushEvery:   opts.FlushEvery,
		Flush:        t.persist,
		AutoRollover: opts.AutoRollover,
		Logger:       opts.Logger,
	})
	t.listener = listener.New(opts.Source, t.counter, opts.Logger)
	return t
}

// Start begins a listening session. ErrAlreadyListening when one is
// active.
func (t *Tracker) Start() error {
	if err := t.listener.Start(); err != nil {
		return err
	}
	metrics.SessionsTotal.Inc()
	return nil
}

// Stop ends the session after a final flush. ErrNotListening when idle.
func (t *Tracker) Stop() error {
	return t.listener.Stop()
}

// CurrentSnapshot exposes the live counters to any presentation layer.
func (t *Tracker) CurrentSnapshot() model.Snapshot {
	return t.counter.Snapshot()
}

// ResetDaily zeroes the running counters without touching stored rows.
func (t *Tracker) ResetDaily() {
	t.counter.ResetDaily()
}

// ForceFlush pushes the current counts to the store immediately.
func (t *Tracker) ForceFlush() {
	t.counter.ForceFlush()
}

// persist is the flush callback. Failures are logged and swallowed: the
// counters stay intact and the next interval retries with bigger totals,
// so a transient store error delays counts but never loses them.
func (t *Tracker) persist(f counter.Flush) {
	metrics.FlushesTotal.Inc()
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	keys := f.TotalKeys
	if err := t.store.Upsert(ctx, f.Day, f.ScriptA, f.ScriptB, &keys); err != nil {
		metrics.FlushFailures.Inc()
		t.logger.Error("flush failed", "date", f.Day, "err", err)
		return
	}
	t.logger.Debug("flushed daily counts",
		"date", f.Day,
		"script_a", f.ScriptA,
		"script_b", f.ScriptB,
		"total_keys", f.TotalKeys)
}
