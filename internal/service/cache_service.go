package service

import (
	"context"
	"time"
)

type cacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService wraps the cache repository with an on/off switch so callers
// can hold a nil *CacheService when caching is disabled.
type CacheService struct {
	repo    cacheRepository
	ttl     time.Duration
	enabled bool
}

// NewCacheService constructs a cache service. Pass enabled=false (or a nil
// repo) to turn caching into a no-op.
func NewCacheService(repo cacheRepository, ttl time.Duration, enabled bool) *CacheService {
	return &CacheService{repo: repo, ttl: ttl, enabled: enabled && repo != nil}
}

// Enabled reports whether caching is active. Safe on a nil receiver.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled
}

// Get loads a cached value into dest. Returns ErrCacheMiss when absent or
// when caching is disabled.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.repo.Get(ctx, key, dest)
}

// Set stores value under key with the configured TTL.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.repo.Set(ctx, key, value, s.ttl)
}

// Invalidate removes all cached entries matching pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	return s.repo.DeleteByPattern(ctx, pattern)
}
