package cache

import (
	"context"
	"sync"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/providers"
)

// MemoryAdapter is a process-local SearchCache. Entries are never swept;
// stale ones are removed when the search service revisits their key.
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[string]*entities.SearchCacheEntry
}

// NewMemoryAdapter creates an empty in-memory cache
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{entries: make(map[string]*entities.SearchCacheEntry)}
}

var _ providers.SearchCache = (*MemoryAdapter)(nil)

func (a *MemoryAdapter) Get(_ context.Context, key string) (*entities.SearchCacheEntry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.entries[key], nil
}

func (a *MemoryAdapter) Set(_ context.Context, key string, entry *entities.SearchCacheEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[key] = entry
	return nil
}

func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, key)
	return nil
}

func (a *MemoryAdapter) Clear(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = make(map[string]*entities.SearchCacheEntry)
	return nil
}

// Len returns the number of stored entries, stale ones included
func (a *MemoryAdapter) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}
