package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukly/soukly-backend/pkg/enums"
	"github.com/soukly/soukly-backend/pkg/gateway"
	"github.com/soukly/soukly-backend/pkg/redis"
)

// Session is the transient per-order payment protocol state. It exists from
// order creation until the protocol reaches a terminal state; a retry after
// a terminal state starts a fresh session for the same order.
type Session struct {
	OrderID    uuid.UUID                  `json:"order_id"`
	Method     enums.PaymentMethod        `json:"method"`
	State      enums.PaymentState         `json:"state"`
	Amount     decimal.Decimal            `json:"amount"`
	Descriptor *gateway.SessionDescriptor `json:"descriptor,omitempty"`
	CreatedAt  time.Time                  `json:"created_at"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}

// SessionStore persists payment sessions keyed by order id. PutIfAbsent is
// the one-active-session guard: it refuses to overwrite an existing entry.
type SessionStore interface {
	Get(ctx context.Context, orderID uuid.UUID) (*Session, bool, error)
	PutIfAbsent(ctx context.Context, session *Session) (bool, error)
	Save(ctx context.Context, session *Session) error
}

type sessionCache interface {
	PaymentSessionKey(orderID string) string
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	SetJSONNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
}

type redisSessionStore struct {
	cache sessionCache
	ttl   time.Duration
}

// NewRedisSessionStore builds the production session store.
func NewRedisSessionStore(cache sessionCache, ttl time.Duration) (SessionStore, error) {
	if cache == nil {
		return nil, fmt.Errorf("payment session cache required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisSessionStore{cache: cache, ttl: ttl}, nil
}

func (s *redisSessionStore) Get(ctx context.Context, orderID uuid.UUID) (*Session, bool, error) {
	var session Session
	err := s.cache.GetJSON(ctx, s.cache.PaymentSessionKey(orderID.String()), &session)
	if err != nil {
		if redis.IsNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load payment session: %w", err)
	}
	return &session, true, nil
}

func (s *redisSessionStore) PutIfAbsent(ctx context.Context, session *Session) (bool, error) {
	return s.cache.SetJSONNX(ctx, s.cache.PaymentSessionKey(session.OrderID.String()), session, s.ttl)
}

func (s *redisSessionStore) Save(ctx context.Context, session *Session) error {
	return s.cache.SetJSON(ctx, s.cache.PaymentSessionKey(session.OrderID.String()), session, s.ttl)
}

// MemorySessionStore is the in-process store used by tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewMemorySessionStore builds an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[uuid.UUID]*Session)}
}

func (s *MemorySessionStore) Get(_ context.Context, orderID uuid.UUID) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[orderID]
	if !ok {
		return nil, false, nil
	}
	clone := *session
	return &clone, true, nil
}

func (s *MemorySessionStore) PutIfAbsent(_ context.Context, session *Session) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.OrderID]; exists {
		return false, nil
	}
	clone := *session
	s.sessions[session.OrderID] = &clone
	return true, nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.sessions[session.OrderID] = &clone
	return nil
}
