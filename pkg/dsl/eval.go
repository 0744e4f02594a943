package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/scoutmatch/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once

	// programs 缓存已编译的表达式：expr -> cel.Program
	programs sync.Map
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("mctx", cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Compile 编译表达式并缓存，可用于配置加载阶段提前校验表达式。
func Compile(expr string) (cel.Program, error) {
	if prg, ok := programs.Load(expr); ok {
		return prg.(cel.Program), nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.WrapDomainError(core.ModuleDSL, core.ErrorCodeInvalidInput, "compile expression", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	programs.Store(expr, prg)
	return prg, nil
}

// Eval 是候选过滤 DSL 解释器，使用 CEL (Common Expression Language) 实现。
//
// 表达式语法（CEL 标准语法）：
//   - 属性：item.features.age < 25 / item.features.speed >= 80
//   - 画像：item.role == "player" && item.attributes.position == "forward"
//   - 分数：item.score > 0.7
//   - 标签：label.recall_source == "profile"
//   - 请求：mctx.user_id != item.id
//
// 示例：
//   - `item.features.age <= 23 && item.features.skill > 75` → 年轻且技术好
//   - `item.attributes.position in ["forward", "midfielder"]` → 只要前场球员
type Eval struct {
	item *core.Item
	mctx *core.MatchContext
}

// NewEval 创建一个新的 DSL 解释器。
func NewEval(item *core.Item, mctx *core.MatchContext) *Eval {
	return &Eval{item: item, mctx: mctx}
}

// Evaluate 执行 DSL 表达式，返回布尔结果；空表达式视为 true。
// 访问不存在的 key 会返回错误，可用 has(item.features.age) 检查存在性。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	prg, err := Compile(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]any {
	labels := make(map[string]any)
	labelAccessor := make(map[string]any)
	features := make(map[string]any)
	item := map[string]any{
		"id":       "",
		"score":    0.0,
		"features": features,
		"meta":     map[string]any{},
		"labels":   labels,
	}

	if e.item != nil {
		for k, v := range e.item.Labels {
			labels[k] = map[string]any{"value": v.Value, "source": v.Source}
			labelAccessor[k] = v.Value
		}
		for k, v := range e.item.Features {
			features[k] = v
		}
		item["id"] = e.item.ID
		item["score"] = e.item.Score
		if e.item.Meta != nil {
			item["meta"] = e.item.Meta
		}
		if p := e.item.Profile; p != nil {
			item["role"] = string(p.Role)
			item["name"] = p.Name
			item["attributes"] = orEmpty(p.Attributes)
			item["preferences"] = orEmpty(p.Preferences)
		}
	}

	mctx := map[string]any{
		"user_id":     "",
		"target_role": "",
		"backend":     "",
		"params":      map[string]any{},
	}
	if e.mctx != nil {
		mctx["user_id"] = e.mctx.UserID
		mctx["target_role"] = string(e.mctx.TargetRole)
		mctx["backend"] = e.mctx.Backend
		mctx["params"] = orEmpty(e.mctx.Params)
	}

	return map[string]any{
		"item":  item,
		"label": labelAccessor,
		"mctx":  mctx,
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
