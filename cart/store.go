package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists carts per terminal session so thin terminals can keep
// their in-progress cart server-side. Get returns (nil, nil) when the
// terminal has no cart yet.
type Store interface {
	Get(ctx context.Context, terminalID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, terminalID string) error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(terminalID string) string {
	return fmt.Sprintf("cart:terminal:%s", terminalID)
}

func (s *RedisStore) Get(ctx context.Context, terminalID string) (*Cart, error) {
	data, err := s.client.Get(ctx, s.key(terminalID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var c Cart
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(c.TerminalID), data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, terminalID string) error {
	return s.client.Del(ctx, s.key(terminalID)).Err()
}

// MemoryStore backs demo mode and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*Cart)}
}

func (s *MemoryStore) Get(_ context.Context, terminalID string) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[terminalID]
	if !ok {
		return nil, nil
	}
	clone := *c
	clone.Lines = append([]Line{}, c.Lines...)
	return &clone, nil
}

func (s *MemoryStore) Save(_ context.Context, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *c
	clone.Lines = append([]Line{}, c.Lines...)
	s.carts[c.TerminalID] = &clone
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, terminalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, terminalID)
	return nil
}
