package authstore

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_AbsentFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "displays.json")
	s := Open(path, discardLogger())
	if s.Len() != 0 {
		t.Fatalf("expected empty table, got %d entries", s.Len())
	}
}

func TestOpen_CorruptFileResetsToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "displays.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Must not panic or error: availability over data.
	s := Open(path, discardLogger())
	if s.Len() != 0 {
		t.Fatalf("expected empty table after corrupt load, got %d entries", s.Len())
	}
}

func TestSet_WritesThroughImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "displays.json")
	s := Open(path, discardLogger())

	rec := Record{Active: true, Mode: "2560x1440", Position: "0 0", Scale: 1.5}
	if err := s.Set("Dell-U2720Q-123", rec); err != nil {
		t.Fatalf("set: %v", err)
	}

	// A fresh load must see the mutation without any explicit save call.
	reloaded := Open(path, discardLogger())
	got, ok := reloaded.Get("Dell-U2720Q-123")
	if !ok {
		t.Fatalf("expected identity known after reload")
	}
	if got != rec {
		t.Fatalf("expected %+v, got %+v", rec, got)
	}
}

func TestSet_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "displays.json")
	s := Open(path, discardLogger())
	if err := s.Set("LG-27GL850-456", Record{Active: true}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file created: %v", err)
	}
}

func TestSave_LeavesValidJSONOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "displays.json")
	s := Open(path, discardLogger())
	if err := s.Set("a", Record{Active: true}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("b", Record{Active: false, Mode: "1920x1080"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var table map[string]Record
	if err := json.Unmarshal(data, &table); err != nil {
		t.Fatalf("on-disk table is not valid JSON: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("expected 2 entries on disk, got %d", len(table))
	}

	// No temp files left behind by the atomic replace.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the table file, found %d entries", len(entries))
	}
}

func TestForget_RemovesEntryAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "displays.json")
	s := Open(path, discardLogger())
	if err := s.Set("a", Record{Active: true}); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := s.Forget("a"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if s.IsKnown("a") {
		t.Fatalf("expected entry removed")
	}

	reloaded := Open(path, discardLogger())
	if reloaded.IsKnown("a") {
		t.Fatalf("expected removal persisted")
	}
}

func TestForget_AbsentIdentityIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "displays.json")
	s := Open(path, discardLogger())
	if err := s.Forget("never-seen"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	// No file is written for a no-op forget.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file, got stat err %v", err)
	}
}

func TestSet_FailedSaveKeepsMemory(t *testing.T) {
	// Point the store's parent "directory" at a regular file so MkdirAll
	// fails and the write-through cannot succeed.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := Open(filepath.Join(blocker, "displays.json"), discardLogger())
	err := s.Set("a", Record{Active: true})
	if err == nil {
		t.Fatalf("expected save failure")
	}

	// Memory is not rolled back: disk and memory diverge until the next
	// successful save.
	if !s.IsKnown("a") {
		t.Fatalf("expected in-memory entry retained after failed save")
	}
}
