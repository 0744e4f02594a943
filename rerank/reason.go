package rerank

import (
	"context"
	"fmt"

	"github.com/rushteam/scoutmatch/core"
	"github.com/rushteam/scoutmatch/pipeline"
	"github.com/rushteam/scoutmatch/pkg/utils"
)

// ReasonNode 为每个候选生成展示用的推荐理由与分类信息，写入 Item.Meta：
//   - reason：按候选角色生成的理由文案
//   - category：位置 / 专长 / 角色
//   - location：国家或城市
//   - description：画像简介
//
// 同时写入 label：reason（Source 为候选角色）。
type ReasonNode struct{}

func (n *ReasonNode) Name() string        { return "postprocess.reason" }
func (n *ReasonNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *ReasonNode) Process(
	_ context.Context,
	_ *core.MatchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	for _, it := range items {
		if it == nil || it.Profile == nil {
			continue
		}
		p := it.Profile
		reason := Reason(p)
		it.PutMeta("reason", reason)
		it.PutMeta("category", category(p))
		if loc := firstAttr(p, "country", "city"); loc != "" {
			it.PutMeta("location", loc)
		}
		it.PutMeta("description", orDefault(firstAttr(p, "description"), "No description available"))
		it.PutLabel("reason", utils.Label{Value: reason, Source: string(p.Role)})
	}
	return items, nil
}

// Reason 按候选角色生成推荐理由
func Reason(p *core.Profile) string {
	if p == nil {
		return ""
	}
	switch p.Role {
	case core.RolePlayer:
		return fmt.Sprintf("Player with %s matches your preferences", orDefault(p.Position(), "similar skills"))
	case core.RoleClub:
		return fmt.Sprintf("Club in %s matches your career goals", orDefault(firstAttr(p, "country"), "your region"))
	case core.RoleCoach:
		return fmt.Sprintf("Coach specializing in %s could improve your skills", orDefault(firstAttr(p, "specialization"), "your needs"))
	case core.RoleAgent:
		return fmt.Sprintf("Agent with experience in %s could help your career", orDefault(firstAttr(p, "specialization"), "your area"))
	}
	return ""
}

func category(p *core.Profile) string {
	if c := firstAttr(p, "position", "specialization"); c != "" {
		return c
	}
	return string(p.Role)
}

func firstAttr(p *core.Profile, keys ...string) string {
	if p.Attributes == nil {
		return ""
	}
	for _, k := range keys {
		if s, ok := p.Attributes[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var _ pipeline.Node = (*ReasonNode)(nil)
