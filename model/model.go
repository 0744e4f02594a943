// Package model 定义打分后端的持久化快照、训练与加载。
//
// 快照（Snapshot）是后端的可序列化形态：
//   - knn：schema + 拟合好的 StandardScaler + 参考集
//   - similarity：schema + 带标签的向量池
//
// 快照可以写入 JSON / YAML 文件或 core.Store，由 registry 在首次使用时加载。
package model

import (
	"time"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/feature"
	"github.com/rushteam/scoutmatch/scorer"
)

// SnapshotVersion 当前快照格式版本
const SnapshotVersion = 1

// Reference 是快照中的一条参考向量
type Reference struct {
	ID     string             `json:"id" yaml:"id"`
	Vector core.FeatureVector `json:"vector" yaml:"vector"`
}

// Snapshot 是打分后端的持久化快照
type Snapshot struct {
	Kind       string                  `json:"kind" yaml:"kind"`
	Version    int                     `json:"version" yaml:"version"`
	Schema     core.FeatureSchema      `json:"schema" yaml:"schema"`
	Scaler     *feature.StandardScaler `json:"scaler,omitempty" yaml:"scaler,omitempty"`
	References []Reference             `json:"references" yaml:"references"`
	TrainedAt  time.Time               `json:"trained_at" yaml:"trained_at"`
}

// ErrModelNotFound 表示持久化模型不存在
var ErrModelNotFound = core.NewDomainError(core.ModuleModel, core.ErrorCodeNotFound, "model: snapshot not found")

// Validate 校验快照完整性：kind 合法、向量维度与 schema 一致、knn 带 scaler
func (s *Snapshot) Validate() error {
	if s == nil {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeInternalError, "model: nil snapshot")
	}
	switch s.Kind {
	case core.BackendKNN:
		if s.Scaler == nil || s.Scaler.Dimension() != s.Schema.Len() || len(s.Scaler.Std) != s.Schema.Len() {
			return core.NewDomainError(core.ModuleModel, core.ErrorCodeInternalError, "model: knn snapshot has no valid scaler")
		}
	case core.BackendSimilarity:
	default:
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeInternalError, "model: unknown snapshot kind "+s.Kind)
	}
	if s.Schema.Len() == 0 {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeInternalError, "model: snapshot has empty schema")
	}
	for _, r := range s.References {
		if len(r.Vector) != s.Schema.Len() {
			return core.NewDomainError(core.ModuleModel, core.ErrorCodeInternalError, "model: reference "+r.ID+" does not match schema")
		}
	}
	return nil
}

// Pool 将参考集转为候选池（保持快照中的顺序）
func (s *Snapshot) Pool() *core.CandidatePool {
	pool := core.NewCandidatePool(s.Schema)
	for _, r := range s.References {
		_ = pool.Add(r.ID, r.Vector)
	}
	return pool
}

// Backend 由快照构建只读的打分后端
func (s *Snapshot) Backend() (scorer.Backend, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	switch s.Kind {
	case core.BackendKNN:
		return scorer.NewKNN(s.Schema, s.Scaler, s.Pool())
	default:
		return scorer.NewSimilarity(s.Schema, s.Pool())
	}
}

// SnapshotOf 将后端导出为快照
func SnapshotOf(b scorer.Backend) *Snapshot {
	snap := &Snapshot{
		Kind:      b.Name(),
		Version:   SnapshotVersion,
		Schema:    b.Schema().Clone(),
		TrainedAt: time.Now().UTC(),
	}
	var pool *core.CandidatePool
	switch v := b.(type) {
	case *scorer.KNN:
		snap.Scaler = v.Scaler()
		pool = v.References()
	case *scorer.Similarity:
		pool = v.Pool()
	}
	for _, c := range pool.Candidates() {
		snap.References = append(snap.References, Reference{ID: c.ID, Vector: c.Vector})
	}
	return snap
}
