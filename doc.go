// Package scoutmatch 是球探匹配服务：为球员、俱乐部、经纪人与教练计算相互匹配。
//
// 设计要点：
// - Scoring-first: 打分引擎（feature → scorer → registry）是独立的库，不依赖 HTTP 层
// - Total: registry.Registry 永远返回可用排序，故障降级为确定性的兜底结果
// - Pipeline: 匹配用例通过 Node 串联（Recall → Filter → Rank → ReRank → PostProcess）
package scoutmatch

import (
	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/pipeline"
)

// 轻量 facade：便于直接 import "scoutmatch" 使用核心抽象。
type (
	Pipeline    = pipeline.Pipeline
	Node        = pipeline.Node
	Kind        = pipeline.Kind
	MatchScorer = core.MatchScorer
	MatchResult = core.MatchResult
)

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
