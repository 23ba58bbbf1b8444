package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore persists the ID token of a workspace between restarts.
// Load returns an empty token when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, token string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const tokenKeyPrefix = "dash:token:"

type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Load(ctx context.Context, key string) (string, error) {
	token, err := s.client.Get(ctx, tokenKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, key, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKeyPrefix+key, token, ttl).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, tokenKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

type memoryToken struct {
	token   string
	expires time.Time
}

// MemoryTokenStore keeps tokens for the lifetime of the process.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
	now    func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]memoryToken), now: time.Now}
}

func (s *MemoryTokenStore) Load(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[key]
	if !ok {
		return "", nil
	}
	if !t.expires.IsZero() && !s.now().Before(t.expires) {
		delete(s.tokens, key)
		return "", nil
	}
	return t.token, nil
}

func (s *MemoryTokenStore) Save(_ context.Context, key, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := memoryToken{token: token}
	if ttl > 0 {
		t.expires = s.now().Add(ttl)
	}
	s.tokens[key] = t
	return nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}
