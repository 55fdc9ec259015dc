// Package logbook keeps a human-readable journal of what the auditor did in
// the terminal UI. The UI tails it in its side panel.
package logbook

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the severity column of a journal line.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logbook is an append-only text journal, one entry per line:
//
//	2026-10-16T09:30:00Z INFO  Saved · record #3 · Preparation · A. Auditor
type Logbook struct {
	mu    sync.Mutex
	path  string
	clock func() time.Time
}

// Option customizes a Logbook during construction.
type Option func(*Logbook)

// WithClock overrides the clock used for entry timestamps.
func WithClock(clock func() time.Time) Option {
	return func(l *Logbook) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// New prepares a journal at path. The file itself is created on the first
// Append.
func New(path string, opts ...Option) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: %w", err)
	}
	l := &Logbook{path: path, clock: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Path returns the journal file.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes one entry. Whitespace runs, newlines included, collapse to a
// single space so every entry stays on one line.
func (l *Logbook) Append(level Level, message string) error {
	if l == nil {
		return nil
	}
	entry := fmt.Sprintf("%s %-5s %s\n",
		l.clock().UTC().Format(time.RFC3339),
		level,
		strings.Join(strings.Fields(message), " "),
	)

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logbook: %w", err)
	}
	if _, err := io.WriteString(f, entry); err != nil {
		f.Close()
		return fmt.Errorf("logbook: %w", err)
	}
	return f.Close()
}

// Tail returns the last n entries, oldest first, and the number of entries in
// the journal. A journal that does not exist yet is empty.
func (l *Logbook) Tail(n int) ([]string, int) {
	if l == nil || n <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer f.Close()

	// Entries can carry arbitrarily long auditor input, so read whole lines
	// rather than scanner tokens.
	ring := make([]string, n)
	total := 0
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			ring[total%n] = line
			total++
		}
		if err != nil {
			break
		}
	}
	if total < n {
		return ring[:total:total], total
	}
	start := total % n
	return append(ring[start:], ring[:start]...), total
}

func (l *Logbook) logf(level Level, format string, args ...any) {
	_ = l.Append(level, fmt.Sprintf(format, args...))
}

// Info records a routine action.
func (l *Logbook) Info(format string, args ...any) { l.logf(LevelInfo, format, args...) }

// Warn records something the auditor should notice.
func (l *Logbook) Warn(format string, args ...any) { l.logf(LevelWarn, format, args...) }

// Error records a failed action.
func (l *Logbook) Error(format string, args ...any) { l.logf(LevelError, format, args...) }
