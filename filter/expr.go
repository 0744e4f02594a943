package filter

import (
	"context"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/pkg/dsl"
)

// ParamExpr 是请求参数中的过滤表达式 key，与静态表达式同时生效
const ParamExpr = "expr"

// ExprFilter 使用 CEL 表达式描述“保留条件”：表达式为 false 的候选被过滤。
//
// 示例：
//
//	filter.NewExprFilter(`item.features.age <= 23`)
//	filter.NewExprFilter(`item.attributes.position in ["forward", "midfielder"]`)
type ExprFilter struct {
	Expr string
}

// NewExprFilter 创建表达式过滤器，并提前编译校验表达式
func NewExprFilter(expr string) (*ExprFilter, error) {
	if expr != "" {
		if _, err := dsl.Compile(expr); err != nil {
			return nil, err
		}
	}
	return &ExprFilter{Expr: expr}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	mctx *core.MatchContext,
	item *core.Item,
) (bool, error) {
	eval := dsl.NewEval(item, mctx)
	keep, err := eval.Evaluate(f.Expr)
	if err != nil {
		return false, err
	}
	if !keep {
		return true, nil
	}
	if v, ok := mctx.Param(ParamExpr); ok {
		if expr, _ := v.(string); expr != "" {
			keep, err = eval.Evaluate(expr)
			if err != nil {
				return false, err
			}
			return !keep, nil
		}
	}
	return false, nil
}

var _ Filter = (*ExprFilter)(nil)
