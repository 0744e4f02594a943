package model

import (
	"time"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/feature"
	"github.com/rushteam/scoutmatch/scorer"
)

// SeedRows 返回内置的 5 条球员样本，用于在没有训练模型时合成后端。
func SeedRows() []feature.Row {
	return []feature.Row{
		{ID: "seed_1", Attrs: map[string]any{"age": 22, "height": 180, "speed": 85, "strength": 70, "skill": 80}},
		{ID: "seed_2", Attrs: map[string]any{"age": 25, "height": 175, "speed": 78, "strength": 82, "skill": 75}},
		{ID: "seed_3", Attrs: map[string]any{"age": 19, "height": 172, "speed": 90, "strength": 60, "skill": 78}},
		{ID: "seed_4", Attrs: map[string]any{"age": 28, "height": 185, "speed": 70, "strength": 88, "skill": 72}},
		{ID: "seed_5", Attrs: map[string]any{"age": 24, "height": 178, "speed": 82, "strength": 75, "skill": 85}},
	}
}

// TrainKNN 在训练行上拟合 StandardScaler 并生成 knn 快照
func TrainKNN(schema core.FeatureSchema, rows []feature.Row) (*Snapshot, error) {
	if len(rows) == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "model: no training rows")
	}
	knn, err := scorer.FitKNN(schema, feature.BuildPool(schema, rows))
	if err != nil {
		return nil, err
	}
	return SnapshotOf(knn), nil
}

// BuildSimilarity 由训练行构建 similarity 快照
func BuildSimilarity(schema core.FeatureSchema, rows []feature.Row) (*Snapshot, error) {
	sim, err := scorer.NewSimilarity(schema, feature.BuildPool(schema, rows))
	if err != nil {
		return nil, err
	}
	return SnapshotOf(sim), nil
}

// Train 按 kind 生成快照
func Train(kind string, schema core.FeatureSchema, rows []feature.Row) (*Snapshot, error) {
	switch kind {
	case core.BackendKNN:
		return TrainKNN(schema, rows)
	case core.BackendSimilarity:
		return BuildSimilarity(schema, rows)
	}
	return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "model: unknown backend "+kind)
}

// SeedSnapshot 在内置样本上合成快照；TrainedAt 置零以保证结果可复现
func SeedSnapshot(kind string, schema core.FeatureSchema) (*Snapshot, error) {
	snap, err := Train(kind, schema, SeedRows())
	if err != nil {
		return nil, err
	}
	snap.TrainedAt = time.Time{}
	return snap, nil
}
