package core

import "context"

// 内置打分后端名称
const (
	BackendKNN        = "knn"
	BackendSimilarity = "similarity"
)

// DefaultSchema 是球员属性的默认特征 schema。
var DefaultSchema = FeatureSchema{"age", "height", "speed", "strength", "skill"}

// FeatureSchema 是有序的数值特征名列表，决定向量维度与轴顺序。
// 后端构建完成后不可修改。
type FeatureSchema []string

// Len 返回 schema 维度
func (s FeatureSchema) Len() int { return len(s) }

// Equal 判断两个 schema 是否完全一致（顺序敏感）
func (s FeatureSchema) Equal(other FeatureSchema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone 返回 schema 副本
func (s FeatureSchema) Clone() FeatureSchema {
	out := make(FeatureSchema, len(s))
	copy(out, s)
	return out
}

// FeatureVector 是与 FeatureSchema 一一对应的定长浮点向量。
type FeatureVector []float64

// IsZero 判断是否为全零向量
func (v FeatureVector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Candidate 是候选池中的一个条目。
type Candidate struct {
	ID     string
	Vector FeatureVector
}

// CandidatePool 是按插入顺序保存的候选集合：候选 ID -> FeatureVector。
// 插入顺序即排序时的并列次序；重复 Add 同一 ID 会原地替换向量。
type CandidatePool struct {
	Schema     FeatureSchema
	candidates []Candidate
	index      map[string]int
}

// NewCandidatePool 创建指定 schema 的空候选池
func NewCandidatePool(schema FeatureSchema) *CandidatePool {
	return &CandidatePool{
		Schema: schema,
		index:  make(map[string]int),
	}
}

// Add 添加候选；向量维度与 schema 不一致时返回 INVALID_INPUT
func (p *CandidatePool) Add(id string, vec FeatureVector) error {
	if len(vec) != p.Schema.Len() {
		return NewDomainError(ModuleFeature, ErrorCodeInvalidInput, "candidate vector does not match schema: "+id)
	}
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, ok := p.index[id]; ok {
		p.candidates[i].Vector = vec
		return nil
	}
	p.index[id] = len(p.candidates)
	p.candidates = append(p.candidates, Candidate{ID: id, Vector: vec})
	return nil
}

// Get 按 ID 获取候选向量
func (p *CandidatePool) Get(id string) (FeatureVector, bool) {
	if p == nil {
		return nil, false
	}
	i, ok := p.index[id]
	if !ok {
		return nil, false
	}
	return p.candidates[i].Vector, true
}

// Len 返回候选数量
func (p *CandidatePool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.candidates)
}

// Candidates 返回按插入顺序排列的候选（只读，调用方不应修改）
func (p *CandidatePool) Candidates() []Candidate {
	if p == nil {
		return nil
	}
	return p.candidates
}

// ScoredMatch 是一次打分的结果，Score ∈ [0, 1]，越大越好。
type ScoredMatch struct {
	ID    string  `json:"id" yaml:"id"`
	Score float64 `json:"score" yaml:"score"`
}

// Fault 是打分过程中的内部故障类别，仅用于日志/观测，从不作为错误返回给调用方。
type Fault string

const (
	FaultNone           Fault = ""
	FaultMissingBackend Fault = "missing_backend" // 没有可用的后端（加载与合成都失败）
	FaultUnknownBackend Fault = "unknown_backend" // 后端名称不受支持
	FaultInvalidInput   Fault = "invalid_input"   // schema 不一致、top_n 非法等
	FaultInternal       Fault = "internal"        // 运算异常或 panic
)

// MatchResult 是 MatchScorer 的返回值：Matches 总是可用的排序结果，
// Fault / Err 描述是否走了降级路径以及原因。
type MatchResult struct {
	Matches  []ScoredMatch `json:"matches"`
	Backend  string        `json:"backend"`
	Fallback bool          `json:"fallback"`
	Fault    Fault         `json:"fault,omitempty"`
	Err      error         `json:"-"`
}

// OK 表示结果来自真实后端，没有发生故障
func (r MatchResult) OK() bool { return r.Fault == FaultNone && !r.Fallback }

// MatchScorer 是打分引擎的领域接口，由 registry.Registry 实现。
// 两个方法都是全函数：永远返回可用的排序结果，不返回 error。
type MatchScorer interface {
	// FindMatches 在后端自带的参考集中查找与 attrs 最接近的 topN 个候选
	FindMatches(ctx context.Context, attrs map[string]any, backend string, topN int) MatchResult

	// RankPool 在请求级候选池中查找与 attrs 最接近的 topN 个候选
	RankPool(ctx context.Context, attrs map[string]any, pool *CandidatePool, backend string, topN int) MatchResult

	// Schema 返回打分使用的特征 schema
	Schema() FeatureSchema
}
