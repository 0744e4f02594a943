package registry

import (
	"math"
	"strconv"

	"github.com/rushteam/scoutmatch/core"
)

// MaxFallback 是降级排序的最大条数：超过后 0.9 - 0.05·i 会变为负数
const MaxFallback = 18

// FallbackScore 返回第 i 个（从 1 开始）降级结果的分数：0.9 - 0.05·i，保留两位小数
func FallbackScore(i int) float64 {
	s := math.Round((0.9-0.05*float64(i))*100) / 100
	return math.Max(0, s)
}

// FallbackRanking 生成 n 条确定性的降级结果，ID 为 fallback_<i>
func FallbackRanking(n int) []core.ScoredMatch {
	n = clampFallback(n)
	out := make([]core.ScoredMatch, n)
	for i := 1; i <= n; i++ {
		out[i-1] = core.ScoredMatch{ID: "fallback_" + strconv.Itoa(i), Score: FallbackScore(i)}
	}
	return out
}

// FallbackPool 按插入顺序为候选池前 n 个候选打降级分
func FallbackPool(pool *core.CandidatePool, n int) []core.ScoredMatch {
	n = clampFallback(n)
	candidates := pool.Candidates()
	if n > len(candidates) {
		n = len(candidates)
	}
	out := make([]core.ScoredMatch, n)
	for i := 0; i < n; i++ {
		out[i] = core.ScoredMatch{ID: candidates[i].ID, Score: FallbackScore(i + 1)}
	}
	return out
}

func clampFallback(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxFallback {
		return MaxFallback
	}
	return n
}
