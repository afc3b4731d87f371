package cartview

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soukly/soukly-backend/pkg/redis"
)

// SelectionStore persists the per-identity selected line ids. A nil slice
// with found=false means the selection was never initialized for this
// identity, which is distinct from an explicit empty selection.
type SelectionStore interface {
	Load(ctx context.Context, identityKey string) (ids []uuid.UUID, found bool, err error)
	Save(ctx context.Context, identityKey string, ids []uuid.UUID) error
	Drop(ctx context.Context, identityKey string) error
}

type selectionCache interface {
	CartSelectionKey(identityKey string) string
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type redisSelectionStore struct {
	cache selectionCache
	ttl   time.Duration
}

// NewRedisSelectionStore builds the production selection store.
func NewRedisSelectionStore(cache selectionCache, ttl time.Duration) (SelectionStore, error) {
	if cache == nil {
		return nil, fmt.Errorf("selection cache required")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &redisSelectionStore{cache: cache, ttl: ttl}, nil
}

func (s *redisSelectionStore) Load(ctx context.Context, identityKey string) ([]uuid.UUID, bool, error) {
	var ids []uuid.UUID
	key := s.cache.CartSelectionKey(identityKey)
	err := s.cache.GetJSON(ctx, key, &ids)
	if err != nil {
		if redis.IsNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load cart selection: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	// sliding expiry: the selection lives as long as the cart is in use
	if err := s.cache.Expire(ctx, key, s.ttl); err != nil {
		return nil, false, fmt.Errorf("refresh cart selection ttl: %w", err)
	}
	return ids, true, nil
}

func (s *redisSelectionStore) Save(ctx context.Context, identityKey string, ids []uuid.UUID) error {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return s.cache.SetJSON(ctx, s.cache.CartSelectionKey(identityKey), ids, s.ttl)
}

func (s *redisSelectionStore) Drop(ctx context.Context, identityKey string) error {
	return s.cache.Del(ctx, s.cache.CartSelectionKey(identityKey))
}

// MemorySelectionStore is the in-process store used by tests.
type MemorySelectionStore struct {
	selections map[string][]uuid.UUID
}

// NewMemorySelectionStore builds an empty in-memory selection store.
func NewMemorySelectionStore() *MemorySelectionStore {
	return &MemorySelectionStore{selections: make(map[string][]uuid.UUID)}
}

func (s *MemorySelectionStore) Load(_ context.Context, identityKey string) ([]uuid.UUID, bool, error) {
	ids, ok := s.selections[identityKey]
	if !ok {
		return nil, false, nil
	}
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out, true, nil
}

func (s *MemorySelectionStore) Save(_ context.Context, identityKey string, ids []uuid.UUID) error {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	s.selections[identityKey] = out
	return nil
}

func (s *MemorySelectionStore) Drop(_ context.Context, identityKey string) error {
	delete(s.selections, identityKey)
	return nil
}
