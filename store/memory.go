package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/scoutmatch/core"
)

// sweepEvery 是两次过期清理之间的写入次数
const sweepEvery = 256

// MemoryStore 是进程内 Store：开发、测试与单实例部署使用，重启后数据丢失。
// 过期 key 在读取时视为不存在，每 sweepEvery 次写入顺带清理一次。
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]entry
	writes int
	now    func() time.Time
}

type entry struct {
	value  []byte
	expire time.Time // 零值表示永不过期
}

func (e entry) alive(now time.Time) bool {
	return e.expire.IsZero() || now.Before(e.expire)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]entry), now: time.Now}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || !e.alive(m.now()) {
		return nil, ErrNotFound
	}
	return clone(e.value), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(key, value, ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) BatchGet(_ context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if e, ok := m.data[k]; ok && e.alive(now) {
			out[k] = clone(e.value)
		}
	}
	return out, nil
}

func (m *MemoryStore) BatchSet(_ context.Context, kvs map[string][]byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range kvs {
		m.put(k, v, ttl)
	}
	return nil
}

// Len 返回当前未过期的 key 数量
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	n := 0
	for _, e := range m.data {
		if e.alive(now) {
			n++
		}
	}
	return n
}

func (m *MemoryStore) Close() error { return nil }

// put 需持有写锁
func (m *MemoryStore) put(key string, value []byte, ttl []int) {
	now := m.now()
	e := entry{value: clone(value)}
	if sec := ttlSeconds(ttl); sec > 0 {
		e.expire = now.Add(time.Duration(sec) * time.Second)
	}
	m.data[key] = e

	m.writes++
	if m.writes%sweepEvery != 0 {
		return
	}
	for k, old := range m.data {
		if !old.alive(now) {
			delete(m.data, k)
		}
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var _ core.Store = (*MemoryStore)(nil)
