package rerank

import (
	"context"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/pipeline"
	"github.com/rushteam/scoutmatch/pkg/conv"
)

// ParamMinScore 是请求参数中的最低分 key，覆盖 ThresholdNode.MinScore
const ParamMinScore = "min_score"

// ThresholdNode 剔除分数低于 MinScore 的候选，保持原有顺序。
// 推荐场景默认阈值为 0.5。
type ThresholdNode struct {
	MinScore float64
}

func (n *ThresholdNode) Name() string        { return "rerank.threshold" }
func (n *ThresholdNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *ThresholdNode) Process(
	_ context.Context,
	mctx *core.MatchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	minScore := n.MinScore
	if v, ok := mctx.Param(ParamMinScore); ok {
		if f, ok := conv.ParseFloat64(v); ok {
			minScore = f
		}
	}
	if minScore <= 0 {
		return items, nil
	}

	out := items[:0]
	for _, it := range items {
		if it == nil || it.Score < minScore {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

var _ pipeline.Node = (*ThresholdNode)(nil)
