package testutil

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient keeps values in memory. Expirations are recorded but never
// enforced.
type MockRedisClient struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration

	GetFunc func(ctx context.Context, key string) (string, error)
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.values[key]
	return ok, nil
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}

	return v, nil
}

func (m *MockRedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.values, key)
		delete(m.ttls, key)
	}

	return nil
}

func (m *MockRedisClient) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	if v, ok := m.values[key]; ok {
		var err error
		if n, err = strconv.ParseInt(v, 10, 64); err != nil {
			return 0, err
		}
	} else {
		m.ttls[key] = ttl
	}

	n++
	m.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

// TTL returns the expiration given when key was written.
func (m *MockRedisClient) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ttls[key]
}

