package core

import "github.com/rushteam/scoutmatch/pkg/utils"

// MatchContext 承载请求方/匹配类型/后端选择，贯穿整个 Pipeline 透传。
type MatchContext struct {
	UserID string

	// User 是请求方画像；为空时 Query 必须由调用方直接给出
	User *Profile

	// TargetRole 是要匹配的候选角色
	TargetRole Role

	// Backend 是打分后端名称（knn / similarity）
	Backend string

	// TopN 是期望返回的结果数
	TopN int

	// Query 是参与打分的请求方属性；为空时由 User 推导
	Query map[string]any

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级参数，如 min_score、blacklist、expr 等
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (mctx *MatchContext) PutLabel(key string, lbl utils.Label) {
	if mctx.Labels == nil {
		mctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := mctx.Labels[key]; ok {
		mctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	mctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (mctx *MatchContext) GetLabel(key string) (utils.Label, bool) {
	if mctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := mctx.Labels[key]
	return lbl, ok
}

// Param 读取请求参数
func (mctx *MatchContext) Param(key string) (any, bool) {
	if mctx == nil || mctx.Params == nil {
		return nil, false
	}
	v, ok := mctx.Params[key]
	return v, ok
}
