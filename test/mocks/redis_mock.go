package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient provides the Redis commands the session store and the
// health checker use, backed by a map.
type MockRedisClient struct {
	mu    sync.RWMutex
	data  map[string]string
	lists map[string][]string

	// SetTTLs records the expiration passed to each Set, by key.
	SetTTLs map[string]time.Duration

	// Error injection
	SetError  error
	GetError  error
	DelError  error
	PingError error
	PushError error
	PopError  error

	// BeforeLLen, when set, runs at the start of LLen outside the mock's
	// lock, letting a test hold a call in flight.
	BeforeLLen func()
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		data:    make(map[string]string),
		lists:   make(map[string][]string),
		SetTTLs: make(map[string]time.Duration),
	}
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}

	m.data[key] = fmt.Sprint(value)
	m.SetTTLs[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd := redis.NewStringCmd(ctx)
	if m.GetError != nil {
		cmd.SetErr(m.GetError)
		return cmd
	}

	val, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewIntCmd(ctx)
	if m.DelError != nil {
		cmd.SetErr(m.DelError)
		return cmd
	}

	var deleted int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			deleted++
		}
	}
	cmd.SetVal(deleted)
	return cmd
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.PingError != nil {
		cmd.SetErr(m.PingError)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

func (m *MockRedisClient) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewIntCmd(ctx)
	if m.PushError != nil {
		cmd.SetErr(m.PushError)
		return cmd
	}
	for _, v := range values {
		switch v := v.(type) {
		case []byte:
			m.lists[key] = append(m.lists[key], string(v))
		default:
			m.lists[key] = append(m.lists[key], fmt.Sprint(v))
		}
	}
	cmd.SetVal(int64(len(m.lists[key])))
	return cmd
}

func (m *MockRedisClient) LIndex(ctx context.Context, key string, index int64) *redis.StringCmd {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd := redis.NewStringCmd(ctx)
	if m.GetError != nil {
		cmd.SetErr(m.GetError)
		return cmd
	}
	list := m.lists[key]
	if index < 0 || index >= int64(len(list)) {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(list[index])
	return cmd
}

func (m *MockRedisClient) LPop(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStringCmd(ctx)
	if m.PopError != nil {
		cmd.SetErr(m.PopError)
		return cmd
	}
	list := m.lists[key]
	if len(list) == 0 {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(list[0])
	m.lists[key] = list[1:]
	return cmd
}

func (m *MockRedisClient) LLen(ctx context.Context, key string) *redis.IntCmd {
	if m.BeforeLLen != nil {
		m.BeforeLLen()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(m.lists[key])))
	return cmd
}

// List returns a copy of a list (for test assertions).
func (m *MockRedisClient) List(key string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.lists[key]...)
}

// PushRaw appends a raw entry to a list, bypassing error injection.
func (m *MockRedisClient) PushRaw(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append(m.lists[key], value)
}

// HasKey checks if a key exists (for test assertions).
func (m *MockRedisClient) HasKey(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}
