package feature

import (
	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/pkg/conv"
)

// Build 按 schema 顺序将松散类型的属性 map 转为定长向量。
//
// 全函数、无副作用：
//   - key 缺失 → 0
//   - 数值类型（各宽度 int/uint/float、json.Number、bool）直接转换
//   - 字符串去除首尾空白后按浮点解析，失败 → 0
//   - 其他类型、NaN、±Inf → 0
func Build(schema core.FeatureSchema, attrs map[string]any) core.FeatureVector {
	vec := make(core.FeatureVector, len(schema))
	for i, key := range schema {
		if v, ok := conv.ParseFloat64(attrs[key]); ok {
			vec[i] = v
		}
	}
	return vec
}

// Row 是一条带 ID 的属性记录，用于构建候选池或训练集。
type Row struct {
	ID    string         `json:"id" yaml:"id"`
	Attrs map[string]any `json:"attrs" yaml:"attrs"`
}

// BuildPool 按行顺序构建候选池；重复 ID 保留首次出现的位置、使用最后一次的向量。
func BuildPool(schema core.FeatureSchema, rows []Row) *core.CandidatePool {
	pool := core.NewCandidatePool(schema)
	for _, r := range rows {
		// Build 的输出长度恒等于 schema 长度，Add 不会失败
		_ = pool.Add(r.ID, Build(schema, r.Attrs))
	}
	return pool
}

// BuildAll 将多行属性转为向量列表（顺序与输入一致）
func BuildAll(schema core.FeatureSchema, rows []Row) []core.FeatureVector {
	out := make([]core.FeatureVector, len(rows))
	for i, r := range rows {
		out[i] = Build(schema, r.Attrs)
	}
	return out
}
