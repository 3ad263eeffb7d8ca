package testutil

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient keeps values in memory when the matching Func is not set.
// Expiration is ignored.
type MockRedisClient struct {
	ExistFunc  func(ctx context.Context, key string) (bool, error)
	DelFunc    func(ctx context.Context, key ...string) error
	KeysFunc   func(ctx context.Context, pattern string) ([]string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	GetFunc    func(ctx context.Context, key string) (string, error)
	GetDelFunc func(ctx context.Context, key string) (string, error)
	SetObjFunc func(ctx context.Context, key string, obj any, ttl time.Duration) error
	GetObjFunc func(ctx context.Context, key string, v any) error

	mu   sync.Mutex
	data map[string]string
}

func (m *MockRedisClient) store() map[string]string {
	if m.data == nil {
		m.data = make(map[string]string)
	}

	return m.data
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	if m.ExistFunc != nil {
		return m.ExistFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store()[key]
	return ok, nil
}

func (m *MockRedisClient) Del(ctx context.Context, key ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, key...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range key {
		delete(m.store(), k)
	}

	return nil
}

func (m *MockRedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	if m.KeysFunc != nil {
		return m.KeysFunc(ctx, pattern)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	keys := []string{}
	for k := range m.store() {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}

	return keys, nil
}

func (m *MockRedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store()[key] = value
	return nil
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.store()[key]
	if !ok {
		return "", redis.Nil
	}

	return v, nil
}

func (m *MockRedisClient) GetDel(ctx context.Context, key string) (string, error) {
	if m.GetDelFunc != nil {
		return m.GetDelFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.store()[key]
	if !ok {
		return "", redis.Nil
	}
	delete(m.store(), key)

	return v, nil
}

func (m *MockRedisClient) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	if m.SetObjFunc != nil {
		return m.SetObjFunc(ctx, key, obj, ttl)
	}

	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return m.Set(ctx, key, string(b), ttl)
}

func (m *MockRedisClient) GetObj(ctx context.Context, key string, v any) error {
	if m.GetObjFunc != nil {
		return m.GetObjFunc(ctx, key, v)
	}

	s, err := m.Get(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(s), v)
}
