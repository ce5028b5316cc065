package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/providers"
	redisclient "github.com/zatekoja/dealsearch/internal/infrastructure/clients/redis"
)

// KeyPrefix namespaces search entries in a shared Redis database
const KeyPrefix = providers.SearchCacheKeyPrefix

const clearBatchSize = 200

// RedisAdapter implements SearchCache using Redis with JSON encoded entries
type RedisAdapter struct {
	client *redisclient.Client
}

// NewRedisAdapter creates a new Redis cache adapter
func NewRedisAdapter(client *redisclient.Client) providers.SearchCache {
	return &RedisAdapter{
		client: client,
	}
}

// Get retrieves an entry, returning nil when the key is absent
func (a *RedisAdapter) Get(ctx context.Context, key string) (*entities.SearchCacheEntry, error) {
	data, err := a.client.Client().Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var entry entities.SearchCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &entry, nil
}

// Set stores an entry; Redis expires it after the entry ttl
func (a *RedisAdapter) Set(ctx context.Context, key string, entry *entities.SearchCacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := a.client.Client().Set(ctx, key, data, entry.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}
	return nil
}

// Delete removes a value from cache
func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := a.client.Client().Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	return nil
}

// Clear removes every search entry, scanning so other keys in the database survive
func (a *RedisAdapter) Clear(ctx context.Context) error {
	iter := a.client.Client().Scan(ctx, 0, KeyPrefix+"*", clearBatchSize).Iterator()

	batch := make([]string, 0, clearBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatchSize {
			if err := a.client.Client().Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	if len(batch) > 0 {
		if err := a.client.Client().Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	return nil
}

// Close releases the underlying Redis connection
func (a *RedisAdapter) Close() error {
	return a.client.Close()
}
