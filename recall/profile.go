package recall

import (
	"context"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/feature"
	"github.com/rushteam/scoutmatch/pipeline"
	"github.com/rushteam/scoutmatch/pkg/conv"
	"github.com/rushteam/scoutmatch/pkg/utils"
)

// ProfileRecall 从画像来源召回目标角色的全部候选，请求方本人被排除。
// 召回时即通过 Extractor 填充 Item.Features，供后续过滤与打分使用。
// ProfileRecall 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type ProfileRecall struct {
	Source    core.ProfileSource
	Extractor feature.ProfileExtractor

	// Limit 限制召回数量（0 表示不限制），按来源返回顺序截断
	Limit int
}

func (r *ProfileRecall) Name() string        { return "recall.profile" }
func (r *ProfileRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *ProfileRecall) Process(
	ctx context.Context,
	mctx *core.MatchContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, mctx)
}

func (r *ProfileRecall) Recall(
	ctx context.Context,
	mctx *core.MatchContext,
) ([]*core.Item, error) {
	if r.Source == nil || mctx == nil || mctx.TargetRole == "" {
		return nil, nil
	}
	if mctx.TargetRole == core.RoleAdmin {
		return nil, nil
	}

	profiles, err := r.Source.ListByRole(ctx, mctx.TargetRole, mctx.UserID)
	if err != nil {
		return nil, err
	}
	if r.Limit > 0 && len(profiles) > r.Limit {
		profiles = profiles[:r.Limit]
	}

	return itemsFromProfiles(profiles, r.extractor(), r.Name()), nil
}

func (r *ProfileRecall) extractor() feature.ProfileExtractor {
	if r.Extractor != nil {
		return r.Extractor
	}
	return feature.NewDefaultProfileExtractor()
}

// itemsFromProfiles 将画像转换为 Item，并写入 recall_source label
func itemsFromProfiles(profiles []*core.Profile, ex feature.ProfileExtractor, source string) []*core.Item {
	out := make([]*core.Item, 0, len(profiles))
	for _, p := range profiles {
		if p == nil || p.ID == "" {
			continue
		}
		item := core.NewItem(p.ID)
		item.Profile = p
		for k, v := range ex.Extract(p) {
			if f, ok := conv.ParseFloat64(v); ok {
				item.Features[k] = f
			}
		}
		item.PutMeta("name", p.Name)
		item.PutMeta("role", string(p.Role))
		item.PutLabel("recall_source", utils.Label{Value: source, Source: "recall"})
		out = append(out, item)
	}
	return out
}

var (
	_ Source        = (*ProfileRecall)(nil)
	_ pipeline.Node = (*ProfileRecall)(nil)
)
