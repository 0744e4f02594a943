package pipeline

import (
	"context"

	"github.com/rushteam/scoutmatch/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：按目标角色取出候选画像
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合约束的候选
	KindRank        Kind = "rank"        // 排序阶段：调用打分引擎对候选打分并排序
	KindReRank      Kind = "rerank"      // 重排阶段：阈值、截断等
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充推荐理由等展示信息
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便 Recall 生成、Filter 截断、ReRank 重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		mctx *core.MatchContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
