package profile

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/scoutmatch/core"
)

// MemorySource 是内存实现的画像来源，用于测试/开发/演示。
// ListByRole 按 ID 升序返回，保证候选池顺序稳定。
type MemorySource struct {
	mu       sync.RWMutex
	profiles map[string]*core.Profile
}

func NewMemorySource() *MemorySource {
	return &MemorySource{profiles: make(map[string]*core.Profile)}
}

func (m *MemorySource) Name() string { return "memory" }

// Put 写入（或覆盖）画像
func (m *MemorySource) Put(profiles ...*core.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range profiles {
		if p != nil {
			m.profiles[p.ID] = p
		}
	}
}

func (m *MemorySource) Get(ctx context.Context, id string) (*core.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, core.ErrProfileNotFound
	}
	return p, nil
}

func (m *MemorySource) ListByRole(ctx context.Context, role core.Role, excludeID string) ([]*core.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*core.Profile, 0)
	for id, p := range m.profiles {
		if p.Role == role && id != excludeID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemorySource) Close() error { return nil }

var _ core.ProfileSource = (*MemorySource)(nil)
