package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/scoutmatch/core"
)

// Pipeline 把匹配逻辑拆成可组合的 Node 链：recall → filter → rank → rerank → postprocess。
type Pipeline struct {
	Name   string
	Nodes  []Node
	Logger zerolog.Logger
}

// New 创建 Pipeline
func New(name string, logger zerolog.Logger, nodes ...Node) *Pipeline {
	return &Pipeline{Name: name, Nodes: nodes, Logger: logger}
}

func (p *Pipeline) Run(
	ctx context.Context,
	mctx *core.MatchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, mctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s node %s: %w", node.Kind(), node.Name(), err)
		}
		p.Logger.Debug().
			Str("pipeline", p.Name).
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("took", time.Since(start)).
			Msg("node processed")
		cur = next
	}
	return cur, nil
}
