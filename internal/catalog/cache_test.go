package catalog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bagerileve/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, 10*time.Minute), mr
}

func TestRedisCache_SetAndGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	limit := 2
	product := &domain.Product{
		ID:                  "prinsesstarta",
		Title:               "Prinsesstårta",
		Variants:            []domain.Variant{{ID: "liten", Description: "4 bitar", Price: 220}},
		MaxQuantityPerOrder: &limit,
	}

	require.NoError(t, cache.Set(ctx, product))

	got, err := cache.Get(ctx, "prinsesstarta")
	require.NoError(t, err)
	assert.Equal(t, product.Title, got.Title)
	assert.Equal(t, product.Variants, got.Variants)
	require.NotNil(t, got.MaxQuantityPerOrder)
	assert.Equal(t, 2, *got.MaxQuantityPerOrder)

	ttl := mr.TTL(cacheKey("prinsesstarta"))
	assert.GreaterOrEqual(t, ttl, 10*time.Minute)
	assert.Less(t, ttl, 11*time.Minute)
}

func TestRedisCache_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	got, err := cache.Get(context.Background(), "kanelbulle")

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, &domain.Product{ID: "surdegsbrod"}))

	mr.FastForward(12 * time.Minute)

	_, err := cache.Get(ctx, "surdegsbrod")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey("surdegsbrod"), "{not json"))

	_, err := cache.Get(context.Background(), "surdegsbrod")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Contains(t, err.Error(), "unmarshal product failed")
}

func TestRedisCache_ServerDown(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "surdegsbrod")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis get failed")
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "product:julbrod", cacheKey("julbrod"))
	raw, err := json.Marshal(domain.Product{ID: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"maxQuantityPerOrder":null`)
}
