package recall

import (
	"context"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/feature"
	"github.com/rushteam/scoutmatch/pipeline"
)

// Featured 是推荐位召回源：从 Store 读取运营配置的候选 ID 列表（JSON 数组），
// 再通过画像来源补全画像。
//   - Key 中可以包含 {role}，按目标角色区分推荐位，例如 "featured:{role}"
//   - 如果 Store 为空或 key 不存在，使用内存中的 IDs 作为 fallback
//   - 角色与目标角色不一致、或为请求方本人的候选会被跳过
//
// Featured 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Featured struct {
	Store     core.Store
	Key       string
	IDs       []string // fallback 内存列表
	Profiles  core.ProfileSource
	Extractor feature.ProfileExtractor
}

func (r *Featured) Name() string        { return "recall.featured" }
func (r *Featured) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Featured) Process(
	ctx context.Context,
	mctx *core.MatchContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, mctx)
}

// Recall 实现 Source 接口
func (r *Featured) Recall(
	ctx context.Context,
	mctx *core.MatchContext,
) ([]*core.Item, error) {
	if r.Profiles == nil || mctx == nil {
		return nil, nil
	}

	var ids []string
	if r.Store != nil && r.Key != "" {
		data, err := r.Store.Get(ctx, r.key(mctx.TargetRole))
		if err != nil && !core.IsStoreNotFound(err) {
			return nil, err
		}
		if err == nil {
			if err := json.Unmarshal(data, &ids); err != nil {
				return nil, err
			}
		}
	}
	if len(ids) == 0 {
		ids = r.IDs
	}

	profiles := make([]*core.Profile, 0, len(ids))
	for _, id := range ids {
		if id == mctx.UserID {
			continue
		}
		p, err := r.Profiles.Get(ctx, id)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if mctx.TargetRole != "" && p.Role != mctx.TargetRole {
			continue
		}
		profiles = append(profiles, p)
	}

	ex := r.Extractor
	if ex == nil {
		ex = feature.NewDefaultProfileExtractor()
	}
	return itemsFromProfiles(profiles, ex, r.Name()), nil
}

func (r *Featured) key(role core.Role) string {
	return strings.ReplaceAll(r.Key, "{role}", string(role))
}

var (
	_ Source        = (*Featured)(nil)
	_ pipeline.Node = (*Featured)(nil)
)
