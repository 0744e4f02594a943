package rerank

import (
	"context"
	"strconv"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/pipeline"
	"github.com/rushteam/scoutmatch/pkg/utils"
)

// TopNNode 截取前 N 个候选，放在打分与阈值之后。
// N <= 0 时使用请求的 mctx.TopN；两者都 <= 0 时不截断。
// 发生截断时在请求级 Label "truncated" 记录被截掉的数量。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string { return "rerank.topn" }

func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopNNode) Process(
	_ context.Context,
	mctx *core.MatchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && mctx != nil {
		limit = mctx.TopN
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	if mctx != nil {
		mctx.PutLabel("truncated", utils.Label{Value: strconv.Itoa(len(items) - limit), Source: n.Name()})
	}
	return items[:limit], nil
}

var _ pipeline.Node = (*TopNNode)(nil)
