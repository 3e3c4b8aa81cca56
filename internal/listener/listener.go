// Package listener attaches to a raw key-event source and routes events
// into the counters.
package listener

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/verte-zerg/keytally/internal/counter"
	"github.com/verte-zerg/keytally/internal/model"
)

// State-machine failures. Both are no-ops on the counters.
var (
	ErrAlreadyListening = errors.New("listener already running")
	ErrNotListening     = errors.New("listener not running")
)

// Source is a push-model raw input source. Start must deliver key-down
// events to emit until Stop is called; emit may be invoked from any
// single goroutine the source owns.
type Source interface {
	Start(emit func(model.KeyEvent)) error
	Stop() error
}

// Listener is the Idle/Listening state machine between a Source and a
// Counter. It holds no counters of its own.
type Listener struct {
	source  Source
	counter *counter.Counter
	logger  *slog.Logger

	mu        sync.Mutex
	listening bool
}

// New builds a listener over the given source and counter.
func New(source Source, c *counter.Counter, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{source: source, counter: c, logger: logger}
}

// Start attaches to the source. Starting while already listening fails
// with ErrAlreadyListening; a source registration failure leaves the
// listener idle.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listening {
		l.logger.Warn("start requested while already listening")
		return ErrAlreadyListening
	}
	if err := l.source.Start(l.handle); err != nil {
		return fmt.Errorf("attach to input source: %w", err)
	}
	l.listening = true
	l.counter.StartSession()
	l.logger.Info("listening for key events")
	return nil
}

// Stop detaches from the source, forces a final flush, and reports the
// session duration. Stopping while idle fails with ErrNotListening.
func (l *Listener) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.listening {
		l.logger.Warn("stop requested while not listening")
		return ErrNotListening
	}
	l.listening = false
	if err := l.source.Stop(); err != nil {
		l.logger.Error("detach from input source", "err", err)
	}
	l.counter.ForceFlush()
	duration := l.counter.EndSession()
	l.logger.Info("stopped listening", "session_duration", duration)
	return nil
}

// Listening reports whether a session is active.
func (l *Listener) Listening() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.listening
}

// handle routes one raw event. A fault in one event must never stop the
// stream, so classification problems degrade inside the counter instead
// of propagating here. Release events never reach this path; sources only
// emit key-down events.
func (l *Listener) handle(ev model.KeyEvent) {
	l.counter.RecordKey(ev)
}
