package cache

import (
	"context"
	"time"

	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

// Store holds transcripts keyed by storage key
type Store interface {
	Get(ctx context.Context, key string) (*models.Transcript, bool, error)
	Set(ctx context.Context, key string, t *models.Transcript) error
	Remove(ctx context.Context, key string) error
	TTL() time.Duration
}

// MemoryStore is a Store backed by an in-process TTLCache
type MemoryStore struct {
	cache *TTLCache[*models.Transcript]
}

// NewMemoryStore creates an in-process transcript store
func NewMemoryStore(ttl time.Duration, opts ...Option) *MemoryStore {
	return &MemoryStore{cache: NewTTLCache[*models.Transcript](ttl, opts...)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*models.Transcript, bool, error) {
	t, ok := s.cache.Get(key)
	return t, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, t *models.Transcript) error {
	s.cache.Set(key, t)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

func (s *MemoryStore) TTL() time.Duration {
	return s.cache.TTL()
}

// Len returns the number of stored transcripts, expired ones included
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
