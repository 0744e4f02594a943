package recall

import (
	"context"

	"github.com/rushteam/scoutmatch/core"
)

// Source 表示一个可复用的召回源（按角色全量 / 推荐位 / ...）。
// 可以把它理解为“可并发 fan-out 的策略单元”。
type Source interface {
	Name() string
	Recall(ctx context.Context, mctx *core.MatchContext) ([]*core.Item, error)
}
