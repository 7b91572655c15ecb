// Package authstore persists per-display authorization records keyed by
// hardware identity. The store is the single writer of its table; it is not
// safe for concurrent use and assumes single-instance operation.
package authstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Record is the authorized configuration for one display identity. Presence
// of a record means "known"; absence means deny by default.
type Record struct {
	Active   bool    `json:"active"`
	Mode     string  `json:"mode"`
	Position string  `json:"position"`
	Scale    float64 `json:"scale"`
}

// Store is a write-through table of identity -> Record. Every mutation is
// persisted immediately; a failed save leaves memory and disk diverged
// until the next successful save.
type Store struct {
	path    string
	records map[string]Record
	logger  *slog.Logger
}

// DefaultPath returns the per-user location of the authorization file.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "displayward", "displays.json"), nil
}

// Open loads the store at path. An absent file yields an empty table (the
// default-deny starting state). An unparsable file also yields an empty
// table: availability is preferred over refusing to start, and the loss is
// surfaced as a warning rather than an error.
func Open(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:    path,
		records: make(map[string]Record),
		logger:  logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read authorization file, starting empty",
				"path", path, "error", err)
		}
		return s
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		logger.Warn("authorization file is corrupt, resetting to empty table",
			"path", path, "error", err)
		s.records = make(map[string]Record)
	}
	return s
}

// Save writes the full table to disk, creating parent directories as
// needed. The file is written to a temporary sibling and atomically
// renamed into place so a crashed write never leaves a truncated table.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode authorization table: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write authorization table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace authorization file: %w", err)
	}
	return nil
}

// IsKnown reports whether identity has an authorization record.
func (s *Store) IsKnown(identity string) bool {
	_, ok := s.records[identity]
	return ok
}

// Get returns the record for identity, if present.
func (s *Store) Get(identity string) (Record, bool) {
	rec, ok := s.records[identity]
	return rec, ok
}

// Set upserts the record and writes through to disk. On a save failure the
// in-memory table keeps the new value and the error is returned; callers
// must not assume disk and memory agree afterwards.
func (s *Store) Set(identity string, rec Record) error {
	s.records[identity] = rec
	return s.Save()
}

// Forget removes the record for identity, if present, and writes through.
func (s *Store) Forget(identity string) error {
	if _, ok := s.records[identity]; !ok {
		return nil
	}
	delete(s.records, identity)
	return s.Save()
}

// Len returns the number of known identities.
func (s *Store) Len() int {
	return len(s.records)
}
