package feature

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinMaxNormalize Min-Max 归一化
// 公式: x' = (x - min) / (max - min)
// 特点: 将值缩放到 [0, 1] 区间；所有值相等时统一映射为 0.5
func MinMaxNormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	span := hi - lo
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// Clamp 将值限制在 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// AgeNorm 将年龄映射到 [0, 1]（假设球员年龄在 15-40 之间）
func AgeNorm(age float64) float64 {
	return Clamp((age-15)/25, 0, 1)
}

// positionCodes 位置编码
var positionCodes = map[string]float64{
	"goalkeeper": 0.1,
	"defender":   0.3,
	"midfielder": 0.6,
	"forward":    0.9,
}

// PositionCode 返回位置编码；未知位置为 0.5
func PositionCode(position string) float64 {
	if code, ok := positionCodes[normalizePosition(position)]; ok {
		return code
	}
	return 0.5
}

// MatchPercent 将 [0, 1] 分数转换为 0-100 的整数百分比
func MatchPercent(score float64) int {
	return int(math.Round(Clamp(score, 0, 1) * 100))
}
