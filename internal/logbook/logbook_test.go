package logbook

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journey.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestAppendFoldsMultilineMessages(t *testing.T) {
	fixed := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	book, err := New(filepath.Join(t.TempDir(), "logs", "journey.log"), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Error("commit failed:\n  disk full")
	lines, total := book.Tail(10)
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
	want := "2026-10-16T09:30:00Z ERROR commit failed: disk full"
	if lines[0] != want {
		t.Fatalf("line = %q, want %q", lines[0], want)
	}
}

func TestTailMissingFile(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "journey.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatalf("expected empty tail, got %v %d", lines, total)
	}
}

func TestTailKeepsOrderAcrossWraparound(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "journey.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 7; i++ {
		book.Warn("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 7 {
		t.Fatalf("total = %d, want 7", total)
	}
	for idx, want := range []string{"entry-4", "entry-5", "entry-6"} {
		if !strings.HasSuffix(lines[idx], want) || !strings.Contains(lines[idx], "WARN") {
			t.Fatalf("line %d = %q, want %s", idx, lines[idx], want)
		}
	}
}

func TestTailHandlesVeryLongEntries(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "journey.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	long := strings.Repeat("x", 100_000)
	book.Info("Saved · %s", long)
	book.Info("after")
	lines, total := book.Tail(2)
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if !strings.HasSuffix(lines[0], long) || !strings.HasSuffix(lines[1], "after") {
		t.Fatalf("unexpected tail: %d chars then %q", len(lines[0]), lines[1])
	}
}
