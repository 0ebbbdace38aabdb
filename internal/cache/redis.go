package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

const transcriptKeyPrefix = "transcript:"

// RedisStore is a Store shared between API instances. Expiry is delegated
// to Redis key TTLs.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(host string, port int, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) TTL() time.Duration {
	return s.ttl
}

// Set caches a transcript under key
func (s *RedisStore) Set(ctx context.Context, key string, t *models.Transcript) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	return s.client.Set(ctx, transcriptKeyPrefix+key, data, s.ttl).Err()
}

// Get retrieves a cached transcript
func (s *RedisStore) Get(ctx context.Context, key string) (*models.Transcript, bool, error) {
	data, err := s.client.Get(ctx, transcriptKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Cache miss
		}
		return nil, false, fmt.Errorf("failed to get transcript from cache: %w", err)
	}

	var t models.Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}

	return &t, true, nil
}

// Remove deletes a cached transcript
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, transcriptKeyPrefix+key).Err()
}
