package listener

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"unicode"

	"golang.org/x/term"

	"github.com/verte-zerg/keytally/internal/model"
)

// Control bytes that end a raw-mode capture session.
const (
	ctrlC = 0x03
	ctrlD = 0x04
)

// TermSource captures keystrokes from a terminal in raw mode. Printable
// runes are emitted as key-down events carrying their character; control
// sequences are emitted without one. Ctrl+C or Ctrl+D ends the stream and
// closes Done.
//
// A TermSource serves exactly one session. Stop restores the terminal
// immediately, but the read goroutine stays parked in its blocking read
// until the next byte or EOF arrives; once stopped the source cannot be
// started again. Build a fresh TermSource per session.
type TermSource struct {
	in *os.File

	mu       sync.Mutex
	restore  func() error
	stopping bool
	done     chan struct{}
}

// NewTermSource builds a source reading from the given terminal, which is
// os.Stdin in practice.
func NewTermSource(in *os.File) *TermSource {
	return &TermSource{in: in, done: make(chan struct{})}
}

// Done is closed when the input stream ends, whether by Stop or by the
// user keying Ctrl+C/Ctrl+D.
func (s *TermSource) Done() <-chan struct{} {
	return s.done
}

// Start switches the terminal into raw mode and begins delivering key
// events. It fails without side effects when the input is not a terminal.
func (s *TermSource) Start(emit func(model.KeyEvent)) error {
	fd := int(s.in.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("input %s is not a terminal", s.in.Name())
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	s.mu.Lock()
	s.restore = func() error { return term.Restore(fd, oldState) }
	s.mu.Unlock()

	go s.readLoop(emit)
	return nil
}

// Stop restores the terminal. Safe to call after the stream already ended
// on its own.
func (s *TermSource) Stop() error {
	return s.finish()
}

func (s *TermSource) readLoop(emit func(model.KeyEvent)) {
	reader := bufio.NewReader(s.in)
	for {
		r, _, err := reader.ReadRune()
		if err != nil {
			// EOF, or a read failing after Stop closed the terminal state.
			break
		}
		if r == ctrlC || r == ctrlD {
			break
		}
		if unicode.IsPrint(r) {
			emit(model.KeyEvent{Char: r, HasChar: true})
		} else {
			emit(model.KeyEvent{})
		}
	}
	if err := s.finish(); err != nil {
		// Best-effort terminal restore.
		_ = err
	}
}

func (s *TermSource) finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return nil
	}
	s.stopping = true
	close(s.done)
	if s.restore != nil {
		return s.restore()
	}
	return nil
}
