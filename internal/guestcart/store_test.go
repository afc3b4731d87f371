package guestcart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soukly/soukly-backend/pkg/config"
)

type fakeCartCache struct {
	values map[string][]byte
	ttls   map[string]time.Duration
	miss   error
}

func newFakeCartCache(miss error) *fakeCartCache {
	return &fakeCartCache{
		values: make(map[string][]byte),
		ttls:   make(map[string]time.Duration),
		miss:   miss,
	}
}

func (f *fakeCartCache) GuestCartKey(deviceToken string) string {
	return "sk:guest_cart:" + deviceToken
}

func (f *fakeCartCache) GetJSON(_ context.Context, key string, dest any) error {
	raw, ok := f.values[key]
	if !ok {
		return f.miss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCartCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = raw
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCartCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
		delete(f.ttls, key)
	}
	return nil
}

// The fake signals misses with the real go-redis sentinel so the store's
// IsNil path is exercised.
func redisNil() error { return goredis.Nil }

func newRedisStoreForTest(t *testing.T, cache *fakeCartCache) Store {
	t.Helper()
	store, err := NewRedisStore(cache, config.GuestCartConfig{TTL: time.Hour})
	require.NoError(t, err)
	return store
}

func TestRedisStoreAddPreservesOrderAndPersists(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCartCache(redisNil())
	store := newRedisStoreForTest(t, cache)

	first := uuid.New()
	second := uuid.New()

	require.NoError(t, store.AddItem(ctx, "dev-1", first, 2))
	require.NoError(t, store.AddItem(ctx, "dev-1", second, 1))
	require.NoError(t, store.AddItem(ctx, "dev-1", first, 3))

	lines, err := store.Items(ctx, "dev-1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, first, lines[0].ProductID)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, second, lines[1].ProductID)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, time.Hour, cache.ttls[cache.GuestCartKey("dev-1")])
}

func TestRedisStoreUpdateQuantityFloor(t *testing.T) {
	ctx := context.Background()
	store := newRedisStoreForTest(t, newFakeCartCache(redisNil()))
	productID := uuid.New()

	require.NoError(t, store.AddItem(ctx, "dev-1", productID, 2))
	require.NoError(t, store.UpdateQuantity(ctx, "dev-1", productID, 0))

	qty, err := store.ProductQuantity(ctx, "dev-1", productID)
	require.NoError(t, err)
	assert.Equal(t, 2, qty, "quantities below one must be ignored")

	require.NoError(t, store.UpdateQuantity(ctx, "dev-1", productID, 7))
	qty, err = store.ProductQuantity(ctx, "dev-1", productID)
	require.NoError(t, err)
	assert.Equal(t, 7, qty)
}

func TestRedisStoreClearEmptiesCart(t *testing.T) {
	ctx := context.Background()
	store := newRedisStoreForTest(t, newFakeCartCache(redisNil()))
	productID := uuid.New()

	require.NoError(t, store.AddItem(ctx, "dev-1", productID, 3))
	require.NoError(t, store.Clear(ctx, "dev-1"))

	lines, err := store.Items(ctx, "dev-1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	qty, err := store.ProductQuantity(ctx, "dev-1", productID)
	require.NoError(t, err)
	assert.Zero(t, qty)
}

func TestRedisStoreRemoveLastLineDeletesKey(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCartCache(redisNil())
	store := newRedisStoreForTest(t, cache)
	productID := uuid.New()

	require.NoError(t, store.AddItem(ctx, "dev-1", productID, 1))
	require.NoError(t, store.RemoveItem(ctx, "dev-1", productID))

	assert.Empty(t, cache.values)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := uuid.New()
	second := uuid.New()

	require.NoError(t, store.AddItem(ctx, "dev-1", first, 0))
	require.NoError(t, store.AddItem(ctx, "dev-1", second, 4))
	require.NoError(t, store.RemoveItem(ctx, "dev-1", first))

	lines, err := store.Items(ctx, "dev-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, second, lines[0].ProductID)
	assert.Equal(t, 4, lines[0].Quantity)

	other, err := store.Items(ctx, "dev-2")
	require.NoError(t, err)
	assert.Empty(t, other, "carts are isolated per device token")
}
