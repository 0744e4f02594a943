// Package scorer 实现打分后端：KNN 距离打分与余弦相似度打分。
//
// 后端构建完成后只读，可被多个 goroutine 并发调用，无需加锁。
package scorer

import (
	"sort"

	"github.com/rushteam/scoutmatch/core"
)

// Backend 是打分后端的统一接口，采用策略模式。
//
// 两种实现：
//   - KNN：标准化后按欧氏距离升序，score = 1/(1+d)
//   - Similarity：按余弦相似度降序，score = (cos+1)/2
type Backend interface {
	// Name 返回后端名称（knn / similarity）
	Name() string

	// Schema 返回后端构建时使用的特征 schema
	Schema() core.FeatureSchema

	// Size 返回参考集大小
	Size() int

	// Rank 在后端自带的参考集上对 query 排序；topN <= 0 返回完整排序
	Rank(query core.FeatureVector, topN int) ([]core.ScoredMatch, error)

	// RankPool 在给定候选池上对 query 排序；topN <= 0 返回完整排序
	RankPool(query core.FeatureVector, pool *core.CandidatePool, topN int) ([]core.ScoredMatch, error)
}

// ErrDimensionMismatch 表示 query / 候选池与后端 schema 不一致
var ErrDimensionMismatch = core.NewDomainError(core.ModuleScorer, core.ErrorCodeInvalidInput, "scorer: vector does not match backend schema")

// ErrNonFinite 表示打分过程中出现 NaN / Inf
var ErrNonFinite = core.NewDomainError(core.ModuleScorer, core.ErrorCodeInternalError, "scorer: non-finite score")

func checkQuery(schema core.FeatureSchema, query core.FeatureVector) error {
	if len(query) != schema.Len() {
		return ErrDimensionMismatch
	}
	return nil
}

func checkPool(schema core.FeatureSchema, pool *core.CandidatePool) error {
	if pool == nil {
		return nil
	}
	if !pool.Schema.Equal(schema) {
		return ErrDimensionMismatch
	}
	return nil
}

// sortStable 按 less 稳定排序，并列时保持插入顺序
func sortStable(matches []core.ScoredMatch, less func(a, b core.ScoredMatch) bool) {
	sort.SliceStable(matches, func(i, j int) bool {
		return less(matches[i], matches[j])
	})
}

// Truncate 截断到前 topN 个；topN <= 0 或超过长度时原样返回
func Truncate(matches []core.ScoredMatch, topN int) []core.ScoredMatch {
	if topN <= 0 || topN >= len(matches) {
		return matches
	}
	return matches[:topN]
}
