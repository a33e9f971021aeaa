package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("redis down")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("redis down")
}

func (failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("redis down")
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, NewMetricsService(), 0, zap.NewNop(), true)
	ctx := context.Background()

	var out []string
	assert.False(t, cache.Get(ctx, "k", &out))

	cache.Set(ctx, "k", []string{"a", "b"}, 0)
	require.True(t, cache.Get(ctx, "k", &out))
	assert.Equal(t, []string{"a", "b"}, out)

	require.NoError(t, cache.Invalidate(ctx, "k*"))
	assert.False(t, cache.Get(ctx, "k", &out))
}

func TestCacheServiceDegradesOnFailure(t *testing.T) {
	cache := NewCacheService(failingCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var out []string
	assert.False(t, cache.Get(ctx, "k", &out))
	cache.Set(ctx, "k", []string{"a"}, 0)
	assert.Error(t, cache.Invalidate(ctx, "k*"))
}

func TestCacheServiceDisabled(t *testing.T) {
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, false)
	assert.False(t, cache.Enabled())

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	assert.NoError(t, nilCache.Invalidate(context.Background(), "*"))
}
