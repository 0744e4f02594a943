// Package filter 在打分之前剔除不应出现在匹配结果中的候选：
// 黑名单、请求方拉黑列表与 CEL 表达式条件。
package filter

import (
	"context"

	"github.com/rushteam/scoutmatch/core"
)

// Filter 判断候选是否应被移除，返回 true 表示移除。
type Filter interface {
	Name() string
	ShouldFilter(ctx context.Context, mctx *core.MatchContext, item *core.Item) (bool, error)
}

// Preparer 是 Filter 的可选扩展：每次请求开始时读取一次外部名单，
// 返回绑定到该请求的 Filter，之后逐个候选的判断不再访问 Store。
type Preparer interface {
	Prepare(ctx context.Context, mctx *core.MatchContext) (Filter, error)
}

// idSet 是请求级的按 ID 过滤器，名称沿用产生它的 Filter
type idSet struct {
	name string
	ids  map[string]struct{}
}

func newIDSet(name string, lists ...[]string) *idSet {
	s := &idSet{name: name, ids: make(map[string]struct{})}
	for _, l := range lists {
		for _, id := range l {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

func (s *idSet) Name() string { return s.name }

func (s *idSet) ShouldFilter(_ context.Context, _ *core.MatchContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := s.ids[item.ID]
	return ok, nil
}
