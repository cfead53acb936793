// Package filekv persists collections in a single JSON file on local disk.
// It is the local medium the platform ships with; swapping it for redikv or
// pgkv changes nothing above the store.Backend interface.
package filekv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bellasalon/booking-platform/pkg/logging"
)

// Store is a file-backed store.Backend. All collections live in one JSON
// document mapping collection key to its records; writes go through a temp
// file and rename so a crash mid-write never leaves a torn document.
type Store struct {
	path   string
	logger *logging.Logger

	mu sync.Mutex
}

// New creates a file-backed store at path. The file is created on first
// write; a missing file reads as empty.
func New(path string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{path: path, logger: logger}
}

// ReadCollection returns the records under key. A missing or corrupt file
// reads as an empty collection; corruption is logged, not propagated.
func (s *Store) ReadCollection(_ context.Context, key string) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	records, ok := doc[key]
	if !ok {
		return []json.RawMessage{}, nil
	}
	return records, nil
}

// WriteCollection replaces the records under key and flushes the whole
// document to disk.
func (s *Store) WriteCollection(_ context.Context, key string, records []json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	if records == nil {
		records = []json.RawMessage{}
	}
	doc[key] = records

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("filekv: marshal document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("filekv: create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".salon-*.json")
	if err != nil {
		return fmt.Errorf("filekv: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("filekv: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filekv: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filekv: replace data file: %w", err)
	}
	return nil
}

// load reads the whole document, failing soft to empty. Caller holds mu.
func (s *Store) load() map[string][]json.RawMessage {
	doc := make(map[string][]json.RawMessage)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("data file unreadable, starting empty", "path", s.path, "error", err)
		}
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("data file corrupt, starting empty", "path", s.path, "error", err)
		return make(map[string][]json.RawMessage)
	}
	return doc
}
