package scorer

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// EuclideanDistance 欧氏距离
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	if len(a) == 0 {
		return 0
	}
	return floats.Distance(a, b, 2)
}

// CosineSimilarity 余弦相似度，范围 [-1, 1]；任一侧为零向量时返回 0。
// 两侧先各自归一化为单位向量再求点积，分量接近 MaxFloat64 时也不会溢出。
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	ua, ub := unit(a), unit(b)
	if ua == nil || ub == nil {
		return 0
	}
	return math.Max(-1, math.Min(1, floats.Dot(ua, ub)))
}

// unit 返回 v 方向的单位向量；零向量或含非有限分量时返回 nil
func unit(v []float64) []float64 {
	var m float64
	for _, x := range v {
		if !finite(x) {
			return nil
		}
		m = math.Max(m, math.Abs(x))
	}
	if m == 0 {
		return nil
	}
	dst := make([]float64, len(v))
	for i, x := range v {
		dst[i] = x / m
	}
	n := floats.Norm(dst, 2)
	floats.ScaleTo(dst, 1/n, dst)
	return dst
}

// DistanceScore 将距离映射为 (0, 1] 分数：1/(1+d)
func DistanceScore(d float64) float64 {
	return 1.0 / (1.0 + d)
}

// SimilarityScore 将余弦相似度映射为 [0, 1] 分数；零向量（任一侧）为 0
func SimilarityScore(a, b []float64) float64 {
	if isZero(a) || isZero(b) {
		return 0
	}
	s := (CosineSimilarity(a, b) + 1) / 2
	return math.Max(0, math.Min(1, s))
}

func isZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
