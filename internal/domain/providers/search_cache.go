package providers

import (
	"context"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
)

// SearchCache defines the storage behind the search result memoization.
// Freshness is decided by the caller from the entry's timestamp and ttl.
type SearchCache interface {
	// Get returns the entry stored under key, or nil when there is none
	Get(ctx context.Context, key string) (*entities.SearchCacheEntry, error)

	// Set stores entry under key, replacing any previous entry
	Set(ctx context.Context, key string, entry *entities.SearchCacheEntry) error

	// Delete removes the entry stored under key
	Delete(ctx context.Context, key string) error

	// Clear removes every entry
	Clear(ctx context.Context) error
}

// SearchCacheKeyPrefix namespaces every search cache key
const SearchCacheKeyPrefix = "search:"
