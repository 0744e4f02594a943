package scorer

import (
	"github.com/rushteam/scoutmatch/core"
)

// Similarity 是基于余弦相似度的打分后端。
//
// score = (cos+1)/2，截断到 [0, 1]；query 或候选为零向量时 score = 0。
// 按分数降序稳定排序，并列保持插入顺序。
type Similarity struct {
	schema core.FeatureSchema
	pool   *core.CandidatePool
}

// NewSimilarity 使用带标签的向量池构建相似度后端
func NewSimilarity(schema core.FeatureSchema, pool *core.CandidatePool) (*Similarity, error) {
	if pool == nil {
		pool = core.NewCandidatePool(schema)
	}
	if err := checkPool(schema, pool); err != nil {
		return nil, err
	}
	return &Similarity{schema: schema.Clone(), pool: pool}, nil
}

func (s *Similarity) Name() string               { return core.BackendSimilarity }
func (s *Similarity) Schema() core.FeatureSchema { return s.schema }
func (s *Similarity) Size() int                  { return s.pool.Len() }
func (s *Similarity) Pool() *core.CandidatePool  { return s.pool }

func (s *Similarity) Rank(query core.FeatureVector, topN int) ([]core.ScoredMatch, error) {
	return s.RankPool(query, s.pool, topN)
}

func (s *Similarity) RankPool(query core.FeatureVector, pool *core.CandidatePool, topN int) ([]core.ScoredMatch, error) {
	if err := checkQuery(s.schema, query); err != nil {
		return nil, err
	}
	if err := checkPool(s.schema, pool); err != nil {
		return nil, err
	}
	candidates := pool.Candidates()
	matches := make([]core.ScoredMatch, len(candidates))
	for i, c := range candidates {
		score := SimilarityScore(query, c.Vector)
		if !finite(score) {
			return nil, ErrNonFinite
		}
		matches[i] = core.ScoredMatch{ID: c.ID, Score: score}
	}
	sortStable(matches, func(a, b core.ScoredMatch) bool {
		return a.Score > b.Score
	})
	return Truncate(matches, topN), nil
}

var _ Backend = (*Similarity)(nil)
