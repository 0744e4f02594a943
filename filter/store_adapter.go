package filter

import (
	"context"

	json "github.com/goccy/go-json"

	"github.com/rushteam/scoutmatch/core"
)

// DefaultUserBlockPrefix 是拉黑列表的默认 key 前缀，实际 key 为 {prefix}:{userID}
const DefaultUserBlockPrefix = "user:block"

// StoreAdapter 在 core.Store 上读写候选 ID 名单，值为 JSON 字符串数组。
// 同时实现 BlacklistStore 与 UserBlockStore。
type StoreAdapter struct {
	store core.Store
}

// NewStoreAdapter 创建名单适配器
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// List 读取 key 对应的名单；key 不存在时返回空名单
func (a *StoreAdapter) List(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if core.IsStoreNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInternalError, "filter: malformed id list "+key, err)
	}
	return ids, nil
}

// PutList 写入名单（运营工具与测试使用）
func (a *StoreAdapter) PutList(ctx context.Context, key string, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, data)
}

func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	return a.List(ctx, key)
}

func (a *StoreAdapter) GetUserBlocks(ctx context.Context, userID string, keyPrefix string) ([]string, error) {
	if keyPrefix == "" {
		keyPrefix = DefaultUserBlockPrefix
	}
	return a.List(ctx, keyPrefix+":"+userID)
}

var (
	_ BlacklistStore = (*StoreAdapter)(nil)
	_ UserBlockStore = (*StoreAdapter)(nil)
)
