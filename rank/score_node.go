package rank

import (
	"context"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/feature"
	"github.com/rushteam/scoutmatch/pipeline"
	"github.com/rushteam/scoutmatch/pkg/utils"
)

// ScoreNode 调用打分引擎（core.MatchScorer.RankPool）对召回的候选打分并排序。
//   - 查询向量：优先使用 mctx.Query，否则由 Extractor 从 mctx.User 推导
//   - 候选向量：item.Features 按打分 schema 构建，缺失维度为 0
//   - 写入 labels：rank_backend；走降级路径时额外写入 rank_fallback（Source 为故障类别）
//   - 更新 item.Score，按打分结果重新排序；未被打分的候选（降级上限之外）以 0 分排在末尾
type ScoreNode struct {
	Scorer    core.MatchScorer
	Extractor feature.ProfileExtractor

	// Backend 是默认打分后端，mctx.Backend 非空时以其为准
	Backend string
}

func (n *ScoreNode) Name() string        { return "rank.score" }
func (n *ScoreNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ScoreNode) Process(
	ctx context.Context,
	mctx *core.MatchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Scorer == nil || len(items) == 0 {
		return items, nil
	}

	backend := n.Backend
	if mctx != nil && mctx.Backend != "" {
		backend = mctx.Backend
	}
	if backend == "" {
		backend = core.BackendKNN
	}

	schema := n.Scorer.Schema()
	pool := core.NewCandidatePool(schema)
	byID := make(map[string]*core.Item, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if _, dup := byID[it.ID]; dup {
			continue
		}
		byID[it.ID] = it
		if err := pool.Add(it.ID, feature.Build(schema, featureAttrs(it.Features))); err != nil {
			return nil, err
		}
	}

	res := n.Scorer.RankPool(ctx, n.query(mctx), pool, backend, pool.Len())
	if mctx != nil && res.Fault != core.FaultNone {
		mctx.PutLabel("rank_fault", utils.Label{Value: string(res.Fault), Source: n.Name()})
	}

	out := make([]*core.Item, 0, len(byID))
	scored := make(map[string]struct{}, len(res.Matches))
	for _, m := range res.Matches {
		it, ok := byID[m.ID]
		if !ok {
			continue
		}
		scored[m.ID] = struct{}{}
		n.annotate(it, m.Score, res)
		out = append(out, it)
	}
	for _, c := range pool.Candidates() {
		if _, ok := scored[c.ID]; ok {
			continue
		}
		it := byID[c.ID]
		n.annotate(it, 0, res)
		out = append(out, it)
	}
	return out, nil
}

func (n *ScoreNode) annotate(it *core.Item, score float64, res core.MatchResult) {
	it.Score = score
	it.PutMeta("match_percent", feature.MatchPercent(score))
	it.PutLabel("rank_backend", utils.Label{Value: res.Backend, Source: "rank"})
	if res.Fallback {
		it.PutLabel("rank_fallback", utils.Label{Value: "true", Source: string(res.Fault)})
	}
}

func (n *ScoreNode) query(mctx *core.MatchContext) map[string]any {
	if mctx == nil {
		return nil
	}
	if len(mctx.Query) > 0 {
		return mctx.Query
	}
	ex := n.Extractor
	if ex == nil {
		ex = feature.NewDefaultProfileExtractor()
	}
	return ex.Extract(mctx.User)
}

func featureAttrs(features map[string]float64) map[string]any {
	attrs := make(map[string]any, len(features))
	for k, v := range features {
		attrs[k] = v
	}
	return attrs
}

var _ pipeline.Node = (*ScoreNode)(nil)
