package feature

import (
	"strings"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/pkg/conv"
)

// ProfileExtractor 是画像 → 打分属性的抽取器接口，采用策略模式。
//
// 不同部署的 schema 可能不同（如额外的 market_value / weight 轴），
// 通过实现此接口即可自定义抽取逻辑，无需修改打分引擎。
type ProfileExtractor interface {
	// Extract 从画像中提取打分属性，返回值交给 Build 按 schema 取用
	Extract(p *core.Profile) map[string]any

	// Name 返回抽取器名称（用于日志/监控）
	Name() string
}

// DefaultProfileExtractor 是默认的画像抽取器实现。
//
// 抽取策略：
//  1. 球员：Attributes 中的全部数值字段（age, height, weight, market_value ...）
//     与 Stats（speed / strength / skill ...）
//  2. 非球员（俱乐部 / 经纪人 / 教练）：Preferences 描述其想找的球员，与球员属性同轴
//  3. 在线特征 Features 覆盖同名字段
//  4. 派生字段：age_norm、position_code
type DefaultProfileExtractor struct {
	// Derived 是否输出派生字段
	Derived bool
}

// DefaultProfileExtractorOption 默认抽取器配置选项
type DefaultProfileExtractorOption func(*DefaultProfileExtractor)

// WithDerived 设置是否输出 age_norm / position_code
func WithDerived(enabled bool) DefaultProfileExtractorOption {
	return func(e *DefaultProfileExtractor) {
		e.Derived = enabled
	}
}

// NewDefaultProfileExtractor 创建默认画像抽取器
func NewDefaultProfileExtractor(opts ...DefaultProfileExtractorOption) *DefaultProfileExtractor {
	e := &DefaultProfileExtractor{Derived: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *DefaultProfileExtractor) Name() string { return "profile.default" }

func (e *DefaultProfileExtractor) Extract(p *core.Profile) map[string]any {
	attrs := make(map[string]any)
	if p == nil {
		return attrs
	}

	source := p.Attributes
	if p.Role != core.RolePlayer {
		source = p.Preferences
	}
	for k, v := range source {
		if f, ok := conv.ParseFloat64(v); ok {
			attrs[k] = f
		}
	}
	if p.Role == core.RolePlayer {
		for k, v := range p.Stats {
			attrs[k] = v
		}
	}
	for k, v := range p.Features {
		attrs[k] = v
	}

	if e.Derived {
		if age, ok := conv.ParseFloat64(attrs["age"]); ok {
			attrs["age_norm"] = AgeNorm(age)
		} else {
			attrs["age_norm"] = 0.5
		}
		position, _ := conv.ToString(source["position"])
		attrs["position_code"] = PositionCode(position)
	}
	return attrs
}

// ProfileAttributes 使用默认抽取器提取画像属性
func ProfileAttributes(p *core.Profile) map[string]any {
	return defaultExtractor.Extract(p)
}

var defaultExtractor = NewDefaultProfileExtractor()

var _ ProfileExtractor = (*DefaultProfileExtractor)(nil)

func normalizePosition(position string) string {
	return strings.ToLower(strings.TrimSpace(position))
}
