package scorer

import (
	"sort"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/feature"
)

// KNN 是基于标准化欧氏距离的近邻打分后端。
//
// 流程：
//  1. 使用训练时拟合的 StandardScaler 标准化 query 与每个参考向量
//  2. 计算欧氏距离，升序稳定排序（并列按插入顺序）
//  3. 取前 topN 个，score = 1/(1+d)
type KNN struct {
	schema     core.FeatureSchema
	scaler     *feature.StandardScaler
	references *core.CandidatePool
	scaled     []core.FeatureVector // 预先标准化的参考向量，与 references 顺序一致
}

// NewKNN 使用已拟合的 scaler 与参考集构建 KNN 后端
func NewKNN(schema core.FeatureSchema, scaler *feature.StandardScaler, references *core.CandidatePool) (*KNN, error) {
	if scaler == nil || scaler.Dimension() != schema.Len() {
		return nil, core.NewDomainError(core.ModuleScorer, core.ErrorCodeInvalidInput, "knn: scaler does not match schema")
	}
	if references == nil {
		references = core.NewCandidatePool(schema)
	}
	if err := checkPool(schema, references); err != nil {
		return nil, err
	}
	k := &KNN{
		schema:     schema.Clone(),
		scaler:     scaler,
		references: references,
		scaled:     make([]core.FeatureVector, 0, references.Len()),
	}
	for _, c := range references.Candidates() {
		v, err := scaler.Transform(c.Vector)
		if err != nil {
			return nil, err
		}
		k.scaled = append(k.scaled, v)
	}
	return k, nil
}

// FitKNN 在参考集上拟合 scaler 并构建 KNN 后端
func FitKNN(schema core.FeatureSchema, references *core.CandidatePool) (*KNN, error) {
	samples := make([]core.FeatureVector, 0, references.Len())
	for _, c := range references.Candidates() {
		samples = append(samples, c.Vector)
	}
	scaler, err := feature.FitStandardScaler(samples)
	if err != nil {
		return nil, err
	}
	return NewKNN(schema, scaler, references)
}

func (k *KNN) Name() string                    { return core.BackendKNN }
func (k *KNN) Schema() core.FeatureSchema      { return k.schema }
func (k *KNN) Size() int                       { return k.references.Len() }
func (k *KNN) Scaler() *feature.StandardScaler { return k.scaler }
func (k *KNN) References() *core.CandidatePool { return k.references }

func (k *KNN) Rank(query core.FeatureVector, topN int) ([]core.ScoredMatch, error) {
	if err := checkQuery(k.schema, query); err != nil {
		return nil, err
	}
	q, err := k.scaler.Transform(query)
	if err != nil {
		return nil, err
	}
	return k.rank(q, k.references.Candidates(), k.scaled, topN)
}

func (k *KNN) RankPool(query core.FeatureVector, pool *core.CandidatePool, topN int) ([]core.ScoredMatch, error) {
	if err := checkQuery(k.schema, query); err != nil {
		return nil, err
	}
	if err := checkPool(k.schema, pool); err != nil {
		return nil, err
	}
	q, err := k.scaler.Transform(query)
	if err != nil {
		return nil, err
	}
	candidates := pool.Candidates()
	scaled := make([]core.FeatureVector, len(candidates))
	for i, c := range candidates {
		if scaled[i], err = k.scaler.Transform(c.Vector); err != nil {
			return nil, err
		}
	}
	return k.rank(q, candidates, scaled, topN)
}

func (k *KNN) rank(q core.FeatureVector, candidates []core.Candidate, scaled []core.FeatureVector, topN int) ([]core.ScoredMatch, error) {
	type neighbor struct {
		id   string
		dist float64
	}
	neighbors := make([]neighbor, len(candidates))
	for i, c := range candidates {
		d := EuclideanDistance(q, scaled[i])
		if !finite(d) {
			return nil, ErrNonFinite
		}
		neighbors[i] = neighbor{id: c.ID, dist: d}
	}
	// 按距离升序稳定排序，并列保持插入顺序
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].dist < neighbors[j].dist
	})
	if topN > 0 && topN < len(neighbors) {
		neighbors = neighbors[:topN]
	}

	matches := make([]core.ScoredMatch, len(neighbors))
	for i, n := range neighbors {
		matches[i] = core.ScoredMatch{ID: n.id, Score: DistanceScore(n.dist)}
	}
	return matches, nil
}

var _ Backend = (*KNN)(nil)
