package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SearchConfig(t *testing.T) {
	t.Setenv("SEARCH_CACHE_BACKEND", "redis")
	t.Setenv("SEARCH_CACHE_TTL", "90s")
	t.Setenv("SEARCH_DEFAULT_LIMIT", "15")
	t.Setenv("SEARCH_MAX_LIMIT", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CacheBackendRedis, cfg.Search.CacheBackend)
	assert.Equal(t, 90*time.Second, cfg.Search.CacheTTL)
	assert.Equal(t, 15, cfg.Search.DefaultLimit)
	assert.Equal(t, 50, cfg.Search.MaxLimit)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CacheBackendMemory, cfg.Search.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.Search.CacheTTL)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, 100, cfg.Search.MaxLimit)
	assert.Equal(t, 100, cfg.Search.NearbyLimit)
	assert.Equal(t, 10, cfg.Search.SuggestionLimit)
	assert.Equal(t, 5*time.Second, cfg.Search.AnalyticsTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("SEARCH_CACHE_TTL", "five minutes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Search.CacheTTL)
}

func TestLoad_RejectsUnknownCacheBackend(t *testing.T) {
	t.Setenv("SEARCH_CACHE_BACKEND", "memcached")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsInconsistentLimits(t *testing.T) {
	t.Setenv("SEARCH_DEFAULT_LIMIT", "50")
	t.Setenv("SEARCH_MAX_LIMIT", "10")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "deals", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=deals sslmode=disable", c.DatabaseDSN())
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://deals.example.com, https://admin.example.com,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://deals.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
}
