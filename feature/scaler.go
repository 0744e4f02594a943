package feature

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rushteam/scoutmatch/core"
)

// StandardScaler 按特征维度做标准化：z = (x - μ) / σ。
//
// σ 为总体标准差（与常见 ML 库的 StandardScaler 一致）；σ 为 0 时按 1 处理，
// 避免常量特征产生除零。Fit 之后只读，可被多个 goroutine 并发使用。
type StandardScaler struct {
	Mean []float64 `json:"mean" yaml:"mean"`
	Std  []float64 `json:"std" yaml:"std"`
}

// FitStandardScaler 在样本上拟合 scaler；样本向量长度必须一致。
func FitStandardScaler(samples []core.FeatureVector) (*StandardScaler, error) {
	if len(samples) == 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput, "scaler: no samples to fit")
	}
	dim := len(samples[0])
	for _, s := range samples {
		if len(s) != dim {
			return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput, "scaler: samples differ in length")
		}
	}

	n := float64(len(samples))
	scaler := &StandardScaler{
		Mean: make([]float64, dim),
		Std:  make([]float64, dim),
	}
	col := make([]float64, len(samples))
	for j := 0; j < dim; j++ {
		for i, s := range samples {
			col[i] = s[j]
		}
		if len(samples) < 2 {
			scaler.Mean[j] = col[0]
			scaler.Std[j] = 1
			continue
		}
		mean, variance := stat.MeanVariance(col, nil)
		// stat.MeanVariance 返回无偏样本方差，换算为总体方差
		std := math.Sqrt(variance * (n - 1) / n)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		scaler.Mean[j] = mean
		scaler.Std[j] = std
	}
	return scaler, nil
}

// Dimension 返回 scaler 的维度
func (s *StandardScaler) Dimension() int { return len(s.Mean) }

// Transform 标准化单个向量，返回新向量；维度不一致时返回 INVALID_INPUT。
func (s *StandardScaler) Transform(v core.FeatureVector) (core.FeatureVector, error) {
	if len(v) != len(s.Mean) {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput, "scaler: vector does not match fitted dimension")
	}
	out := make(core.FeatureVector, len(v))
	for i, x := range v {
		std := s.Std[i]
		if std == 0 {
			std = 1
		}
		out[i] = (x - s.Mean[i]) / std
	}
	return out, nil
}

// TransformAll 标准化一组向量
func (s *StandardScaler) TransformAll(vs []core.FeatureVector) ([]core.FeatureVector, error) {
	out := make([]core.FeatureVector, len(vs))
	for i, v := range vs {
		t, err := s.Transform(v)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
