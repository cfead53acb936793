// Package redikv persists collections in Redis, one key per collection with
// the records serialized as a JSON array.
package redikv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bellasalon/booking-platform/pkg/logging"
)

// Store is a Redis-backed store.Backend.
type Store struct {
	redis  *redis.Client
	logger *logging.Logger
}

// New creates a Redis-backed store.
func New(redisClient *redis.Client, logger *logging.Logger) *Store {
	if redisClient == nil {
		panic("redikv: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{redis: redisClient, logger: logger}
}

// ReadCollection returns the records under key. A missing key or an
// undecodable payload reads as an empty collection.
func (s *Store) ReadCollection(ctx context.Context, key string) ([]json.RawMessage, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redikv: get %s: %w", key, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("collection payload corrupt, treating as empty", "key", key, "error", err)
		return []json.RawMessage{}, nil
	}
	return records, nil
}

// WriteCollection replaces the records under key.
func (s *Store) WriteCollection(ctx context.Context, key string, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("redikv: marshal %s: %w", key, err)
	}
	if err := s.redis.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redikv: set %s: %w", key, err)
	}
	return nil
}
