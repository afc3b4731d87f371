package guestcart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soukly/soukly-backend/pkg/config"
	"github.com/soukly/soukly-backend/pkg/redis"
)

// Line is one guest-cart entry keyed by product id.
type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Store holds the device-scoped cart lines. Implementations persist
// synchronously; readers observe the latest write. Stock validation is
// the caller's responsibility, not the store's.
type Store interface {
	Items(ctx context.Context, deviceToken string) ([]Line, error)
	AddItem(ctx context.Context, deviceToken string, productID uuid.UUID, quantity int) error
	UpdateQuantity(ctx context.Context, deviceToken string, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, deviceToken string, productID uuid.UUID) error
	Clear(ctx context.Context, deviceToken string) error
	ProductQuantity(ctx context.Context, deviceToken string, productID uuid.UUID) (int, error)
}

type cartCache interface {
	GuestCartKey(deviceToken string) string
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type redisStore struct {
	cache cartCache
	ttl   time.Duration
}

// NewRedisStore builds the production store on top of the Redis wrapper.
// Carts are stored as an ordered JSON line list per device token so that
// line order survives round trips.
func NewRedisStore(cache cartCache, cfg config.GuestCartConfig) (Store, error) {
	if cache == nil {
		return nil, fmt.Errorf("guest cart cache required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &redisStore{cache: cache, ttl: ttl}, nil
}

func (s *redisStore) load(ctx context.Context, deviceToken string) ([]Line, error) {
	var lines []Line
	err := s.cache.GetJSON(ctx, s.cache.GuestCartKey(deviceToken), &lines)
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load guest cart: %w", err)
	}
	return lines, nil
}

func (s *redisStore) save(ctx context.Context, deviceToken string, lines []Line) error {
	key := s.cache.GuestCartKey(deviceToken)
	if len(lines) == 0 {
		return s.cache.Del(ctx, key)
	}
	// Every write refreshes the TTL so an active device never loses its cart.
	return s.cache.SetJSON(ctx, key, lines, s.ttl)
}

func (s *redisStore) Items(ctx context.Context, deviceToken string) ([]Line, error) {
	return s.load(ctx, deviceToken)
}

func (s *redisStore) AddItem(ctx context.Context, deviceToken string, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	lines, err := s.load(ctx, deviceToken)
	if err != nil {
		return err
	}
	lines = upsertLine(lines, productID, quantity)
	return s.save(ctx, deviceToken, lines)
}

func (s *redisStore) UpdateQuantity(ctx context.Context, deviceToken string, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return nil
	}
	lines, err := s.load(ctx, deviceToken)
	if err != nil {
		return err
	}
	changed := false
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}
	return s.save(ctx, deviceToken, lines)
}

func (s *redisStore) RemoveItem(ctx context.Context, deviceToken string, productID uuid.UUID) error {
	lines, err := s.load(ctx, deviceToken)
	if err != nil {
		return err
	}
	filtered := lines[:0]
	for _, line := range lines {
		if line.ProductID != productID {
			filtered = append(filtered, line)
		}
	}
	if len(filtered) == len(lines) {
		return nil
	}
	return s.save(ctx, deviceToken, filtered)
}

func (s *redisStore) Clear(ctx context.Context, deviceToken string) error {
	return s.cache.Del(ctx, s.cache.GuestCartKey(deviceToken))
}

func (s *redisStore) ProductQuantity(ctx context.Context, deviceToken string, productID uuid.UUID) (int, error) {
	lines, err := s.load(ctx, deviceToken)
	if err != nil {
		return 0, err
	}
	return quantityOf(lines, productID), nil
}

func upsertLine(lines []Line, productID uuid.UUID, quantity int) []Line {
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity += quantity
			return lines
		}
	}
	return append(lines, Line{ProductID: productID, Quantity: quantity})
}

func quantityOf(lines []Line, productID uuid.UUID) int {
	for _, line := range lines {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}
