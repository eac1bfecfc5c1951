// Package idempotency remembers the outcome of recipe creation requests so
// a retried POST carrying the same Idempotency-Key does not add twice.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store records the recipe id created for a (tenant, key) pair.
type Store interface {
	// Get returns the id saved for key, with ok=false when there is none.
	Get(ctx context.Context, tenant int, key string) (id int, ok bool, err error)
	// Save records id for key unless a value is already present, returning
	// the id that is stored after the call.
	Save(ctx context.Context, tenant int, key string, id int) (int, error)
}

func cacheKey(tenant int, key string) string {
	return "idempotency:" + strconv.Itoa(tenant) + ":" + key
}

// RedisStore keeps entries in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get looks up key for tenant.
func (s *RedisStore) Get(ctx context.Context, tenant int, key string) (int, bool, error) {
	id, err := s.client.Get(ctx, cacheKey(tenant, key)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get: %w", err)
	}
	return id, true, nil
}

// Save stores id for key with SET NX so concurrent retries agree on one id.
func (s *RedisStore) Save(ctx context.Context, tenant int, key string, id int) (int, error) {
	k := cacheKey(tenant, key)
	set, err := s.client.SetNX(ctx, k, id, s.ttl).Result()
	if err != nil {
		return 0, fmt.Errorf("redis setnx: %w", err)
	}
	if set {
		return id, nil
	}
	prev, err := s.client.Get(ctx, k).Int()
	if err != nil {
		return 0, fmt.Errorf("redis get: %w", err)
	}
	return prev, nil
}

type entry struct {
	id      int
	expires time.Time
}

// MemoryStore is a process-local Store used when Redis is not configured.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore creates an in-memory Store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: make(map[string]entry), ttl: ttl, now: time.Now}
}

// Get looks up key for tenant.
func (s *MemoryStore) Get(ctx context.Context, tenant int, key string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[cacheKey(tenant, key)]
	if !ok || !s.now().Before(e.expires) {
		return 0, false, nil
	}
	return e.id, true, nil
}

// Save stores id for key unless a live entry exists.
func (s *MemoryStore) Save(ctx context.Context, tenant int, key string, id int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	k := cacheKey(tenant, key)
	if e, ok := s.items[k]; ok && now.Before(e.expires) {
		return e.id, nil
	}
	for old, e := range s.items {
		if !now.Before(e.expires) {
			delete(s.items, old)
		}
	}
	s.items[k] = entry{id: id, expires: now.Add(s.ttl)}
	return id, nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
