package filter

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/pipeline"
	"github.com/rushteam/scoutmatch/pkg/utils"
)

// FilterNode 依次应用 Filters，任一返回 true 的候选被移除，并打上 filtered 标签。
// 过滤器出错时记录日志并保留候选；请求级 Label "filtered" 汇总每个过滤器移除的数量。
type FilterNode struct {
	Filters []Filter
	Logger  zerolog.Logger
}

func (n *FilterNode) Name() string { return "filter.node" }

func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *FilterNode) Process(
	ctx context.Context,
	mctx *core.MatchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	filters := n.prepare(ctx, mctx)
	removed := make([]int, len(filters))
	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i := n.match(ctx, mctx, filters, item); i >= 0 {
			removed[i]++
			item.PutLabel("filtered", utils.Label{Value: "true", Source: filters[i].Name()})
			continue
		}
		out = append(out, item)
	}

	if mctx != nil {
		for i, c := range removed {
			if c > 0 {
				mctx.PutLabel("filtered", utils.Label{Value: filters[i].Name() + ":" + strconv.Itoa(c), Source: n.Name()})
			}
		}
	}
	return out, nil
}

// prepare 把实现了 Preparer 的过滤器换成请求级实例；准备失败的过滤器本次跳过
func (n *FilterNode) prepare(ctx context.Context, mctx *core.MatchContext) []Filter {
	out := make([]Filter, 0, len(n.Filters))
	for _, f := range n.Filters {
		p, ok := f.(Preparer)
		if !ok {
			out = append(out, f)
			continue
		}
		bound, err := p.Prepare(ctx, mctx)
		if err != nil {
			n.Logger.Warn().Err(err).Str("filter", f.Name()).Msg("prepare filter failed, filter skipped")
			continue
		}
		out = append(out, bound)
	}
	return out
}

// match 返回第一个要求移除 item 的过滤器下标，没有时返回 -1
func (n *FilterNode) match(ctx context.Context, mctx *core.MatchContext, filters []Filter, item *core.Item) int {
	for i, f := range filters {
		drop, err := f.ShouldFilter(ctx, mctx, item)
		if err != nil {
			n.Logger.Warn().Err(err).Str("filter", f.Name()).Str("item", item.ID).Msg("filter failed, item kept")
			continue
		}
		if drop {
			return i
		}
	}
	return -1
}

var _ pipeline.Node = (*FilterNode)(nil)
