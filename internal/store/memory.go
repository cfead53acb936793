package store

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-memory Backend. It is the default for development and the
// workhorse for tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]json.RawMessage

	// FailWrites makes every WriteCollection return ErrWriteFailed. Tests use
	// it to exercise persistence-failure paths.
	FailWrites bool
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]json.RawMessage)}
}

// ReadCollection returns a copy of the stored records, or an empty slice when
// the key is absent.
func (m *Memory) ReadCollection(_ context.Context, key string) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records, ok := m.data[key]
	if !ok {
		return []json.RawMessage{}, nil
	}
	out := make([]json.RawMessage, len(records))
	for i, r := range records {
		out[i] = append(json.RawMessage(nil), r...)
	}
	return out, nil
}

// WriteCollection replaces the collection under key.
func (m *Memory) WriteCollection(_ context.Context, key string, records []json.RawMessage) error {
	if m.FailWrites {
		return ErrWriteFailed
	}

	copied := make([]json.RawMessage, len(records))
	for i, r := range records {
		copied[i] = append(json.RawMessage(nil), r...)
	}

	m.mu.Lock()
	m.data[key] = copied
	m.mu.Unlock()
	return nil
}
