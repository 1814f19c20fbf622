package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sajag-gupta/riseup/domain"
)

// CartStore keeps one cart per user. Get on a user without a cart returns
// an empty cart, not an error.
type CartStore interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

const cartKeyPrefix = "riseup:cart:"

func cartKey(userID string) string {
	return cartKeyPrefix + userID
}

func emptyCart(userID string) *domain.Cart {
	return &domain.Cart{UserID: userID, Items: []domain.CartItem{}}
}

type redisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration) CartStore {
	return &redisCartStore{client: client, ttl: ttl}
}

func (s *redisCartStore) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return emptyCart(userID), nil
	}
	if err != nil {
		return nil, err
	}

	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

// Save rewrites the whole cart and refreshes its TTL.
func (s *redisCartStore) Save(ctx context.Context, cart *domain.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cartKey(cart.UserID), raw, s.ttl).Err()
}

func (s *redisCartStore) Delete(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.client.Del(ctx, cartKey(userID)).Err()
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

type memoryCartStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	carts map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryCartStore is the single-process store used when no Redis URL is
// configured. Carts are copied on the way in and out.
func NewMemoryCartStore(ttl time.Duration) CartStore {
	return &memoryCartStore{
		ttl:   ttl,
		carts: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (s *memoryCartStore) Get(_ context.Context, userID string) (*domain.Cart, error) {
	s.mu.Lock()
	entry, ok := s.carts[userID]
	if ok && s.ttl > 0 && s.now().After(entry.expiresAt) {
		delete(s.carts, userID)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return emptyCart(userID), nil
	}
	var cart domain.Cart
	if err := json.Unmarshal(entry.raw, &cart); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

func (s *memoryCartStore) Save(_ context.Context, cart *domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.carts[cart.UserID] = memoryEntry{raw: raw, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *memoryCartStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.carts, userID)
	s.mu.Unlock()
	return nil
}
