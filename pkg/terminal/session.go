// Package terminal reads single logical keypresses from a raw-mode terminal.
//
// A Session captures the terminal attributes once at Open. Every ReadKey
// switches to raw mode, waits a bounded time for input and restores the
// captured attributes before returning, on every path. Close restores them
// one final time.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Escape starts the three-byte arrow key sequences (ESC '[' A..D)
const Escape byte = 0x1b

var (
	ErrNotTerminal = errors.New("input is not a terminal")
	ErrClosed      = errors.New("terminal session is closed")
)

// modeSwitcher toggles raw mode and puts the captured attributes back
type modeSwitcher interface {
	MakeRaw() error
	Restore() error
}

// Session owns the terminal attributes for the lifetime of the process
type Session struct {
	in     io.Reader
	mode   modeSwitcher
	wait   func(timeout time.Duration) (bool, error)
	mu     sync.Mutex
	closed bool
	once   sync.Once
	err    error
}

// Open captures the attributes of f, which must be a terminal. It fails with
// errors.ErrUnsupported where a bounded wait for input is not available.
func Open(f *os.File) (*Session, error) {
	return open(f, waitSupported)
}

func open(f *os.File, canWait bool) (*Session, error) {
	if !canWait {
		return nil, fmt.Errorf("bounded key wait: %w", errors.ErrUnsupported)
	}

	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%w: %s", ErrNotTerminal, f.Name())
	}

	state, err := term.GetState(fd)
	if err != nil {
		return nil, fmt.Errorf("capture terminal state: %w", err)
	}

	return &Session{
		in:   f,
		mode: &fdMode{fd: fd, original: state},
		wait: func(timeout time.Duration) (bool, error) {
			return waitReadable(fd, timeout)
		},
	}, nil
}

// ReadKey returns one logical key, or "" when nothing arrived within timeout.
//
// An ESC byte is followed by a single read of up to two more bytes. A partial
// escape sequence therefore comes back short and will not match any binding.
func (s *Session) ReadKey(timeout time.Duration) (key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}

	if err := s.mode.MakeRaw(); err != nil {
		return "", fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() {
		if rerr := s.mode.Restore(); rerr != nil && err == nil {
			key, err = "", fmt.Errorf("restore terminal: %w", rerr)
		}
	}()

	ready, err := s.wait(timeout)
	if err != nil {
		return "", fmt.Errorf("wait for input: %w", err)
	}
	if !ready {
		return "", nil
	}

	return decodeKey(s.in)
}

// Close restores the captured attributes. Only the first call has an effect.
func (s *Session) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		s.err = s.mode.Restore()
	})
	return s.err
}

// decodeKey reads one byte and, for ESC, the rest of the arrow sequence
func decodeKey(r io.Reader) (string, error) {
	var first [1]byte
	n, err := r.Read(first[:])
	if n == 0 {
		if err == nil || err == io.EOF {
			return "", io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("read key: %w", err)
	}

	if first[0] != Escape {
		return string(first[:]), nil
	}

	var rest [2]byte
	n, err = r.Read(rest[:])
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read escape sequence: %w", err)
	}
	return string(first[:]) + string(rest[:n]), nil
}

// fdMode switches a file descriptor between raw mode and its captured state
type fdMode struct {
	fd       int
	original *term.State
}

func (m *fdMode) MakeRaw() error {
	_, err := term.MakeRaw(m.fd)
	return err
}

func (m *fdMode) Restore() error {
	return term.Restore(m.fd, m.original)
}
