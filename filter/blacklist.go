package filter

import (
	"context"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/pkg/conv"
)

// ParamBlacklist 是请求参数中的黑名单（[]string），与静态黑名单合并生效
const ParamBlacklist = "blacklist"

// BlacklistStore 读取全局黑名单
type BlacklistStore interface {
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// BlacklistFilter 移除黑名单中的候选。名单来自三处：
// 静态 IDs、请求参数 ParamBlacklist、Store 中 Key 对应的名单（可选）。
type BlacklistFilter struct {
	IDs   map[string]struct{}
	Store BlacklistStore
	Key   string
}

// NewBlacklistFilter 创建黑名单过滤器
func NewBlacklistFilter(ids []string, adapter *StoreAdapter, key string) *BlacklistFilter {
	f := &BlacklistFilter{IDs: make(map[string]struct{}, len(ids)), Key: key}
	for _, id := range ids {
		f.IDs[id] = struct{}{}
	}
	if adapter != nil {
		f.Store = adapter
	}
	return f
}

func (f *BlacklistFilter) Name() string { return "filter.blacklist" }

// dynamic 返回请求参数与 Store 中的名单
func (f *BlacklistFilter) dynamic(ctx context.Context, mctx *core.MatchContext) ([]string, []string, error) {
	var param []string
	if v, ok := mctx.Param(ParamBlacklist); ok {
		param = conv.SliceAnyToString(v)
	}
	if f.Store == nil || f.Key == "" {
		return param, nil, nil
	}
	stored, err := f.Store.GetBlacklist(ctx, f.Key)
	if err != nil && !core.IsStoreNotFound(err) {
		return param, nil, err
	}
	return param, stored, nil
}

// Prepare 合并三处名单为一次请求使用的集合
func (f *BlacklistFilter) Prepare(ctx context.Context, mctx *core.MatchContext) (Filter, error) {
	param, stored, err := f.dynamic(ctx, mctx)
	if err != nil {
		return nil, err
	}
	set := newIDSet(f.Name(), param, stored)
	for id := range f.IDs {
		set.ids[id] = struct{}{}
	}
	return set, nil
}

func (f *BlacklistFilter) ShouldFilter(ctx context.Context, mctx *core.MatchContext, item *core.Item) (bool, error) {
	set, err := f.Prepare(ctx, mctx)
	if err != nil {
		return false, err
	}
	return set.ShouldFilter(ctx, mctx, item)
}

var (
	_ Filter   = (*BlacklistFilter)(nil)
	_ Preparer = (*BlacklistFilter)(nil)
)
