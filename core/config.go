package core

import "time"

// ScoringConfig 是打分相关的配置接口，用于提供默认值。
type ScoringConfig interface {
	// DefaultTopN 返回默认的返回条数
	DefaultTopN() int

	// DefaultThreshold 返回推荐时的默认最低分
	DefaultThreshold() float64

	// DefaultTimeout 返回加载模型 / 读取画像的默认超时时间
	DefaultTimeout() time.Duration
}

// DefaultScoringConfig 是默认的打分配置实现。
type DefaultScoringConfig struct{}

func (c *DefaultScoringConfig) DefaultTopN() int {
	return 5
}

func (c *DefaultScoringConfig) DefaultThreshold() float64 {
	return 0.5
}

func (c *DefaultScoringConfig) DefaultTimeout() time.Duration {
	return 2 * time.Second
}

var _ ScoringConfig = (*DefaultScoringConfig)(nil)
