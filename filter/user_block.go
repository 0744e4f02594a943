package filter

import (
	"context"
	"slices"

	"github.com/rushteam/scoutmatch/core"
)

// UserBlockStore 读取请求方拉黑的候选 ID
type UserBlockStore interface {
	GetUserBlocks(ctx context.Context, userID string, keyPrefix string) ([]string, error)
}

// UserBlockFilter 移除请求方拉黑的候选；没有 UserID 或 Store 时不生效。
type UserBlockFilter struct {
	Store     UserBlockStore
	KeyPrefix string // 为空时使用 DefaultUserBlockPrefix
}

// NewUserBlockFilter 创建拉黑过滤器
func NewUserBlockFilter(adapter *StoreAdapter, keyPrefix string) *UserBlockFilter {
	f := &UserBlockFilter{KeyPrefix: keyPrefix}
	if adapter != nil {
		f.Store = adapter
	}
	return f
}

func (f *UserBlockFilter) Name() string { return "filter.user_block" }

func (f *UserBlockFilter) blocks(ctx context.Context, mctx *core.MatchContext) ([]string, error) {
	if mctx == nil || mctx.UserID == "" || f.Store == nil {
		return nil, nil
	}
	ids, err := f.Store.GetUserBlocks(ctx, mctx.UserID, f.KeyPrefix)
	if core.IsStoreNotFound(err) {
		return nil, nil
	}
	return ids, err
}

// Prepare 每次请求只读取一次拉黑列表
func (f *UserBlockFilter) Prepare(ctx context.Context, mctx *core.MatchContext) (Filter, error) {
	ids, err := f.blocks(ctx, mctx)
	if err != nil {
		return nil, err
	}
	return newIDSet(f.Name(), ids), nil
}

func (f *UserBlockFilter) ShouldFilter(ctx context.Context, mctx *core.MatchContext, item *core.Item) (bool, error) {
	if item == nil {
		return false, nil
	}
	ids, err := f.blocks(ctx, mctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, item.ID), nil
}

var (
	_ Filter   = (*UserBlockFilter)(nil)
	_ Preparer = (*UserBlockFilter)(nil)
)
