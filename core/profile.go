package core

import (
	"context"
	"strings"
	"time"
)

// Role 是平台用户的角色。
type Role string

const (
	RolePlayer Role = "player"
	RoleClub   Role = "club"
	RoleAgent  Role = "agent"
	RoleCoach  Role = "coach"
	RoleAdmin  Role = "admin"
)

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleClub, RoleAgent, RoleCoach, RoleAdmin:
		return true
	}
	return false
}

// ParseMatchType 将匹配类型（players / clubs / agents / coaches）解析为目标角色。
// admin 永远不是匹配目标。
func ParseMatchType(matchType string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(matchType)) {
	case "players", "player":
		return RolePlayer, nil
	case "clubs", "club":
		return RoleClub, nil
	case "agents", "agent":
		return RoleAgent, nil
	case "coaches", "coach":
		return RoleCoach, nil
	}
	return "", NewDomainError(ModuleProfile, ErrorCodeInvalidInput, "unsupported match type: "+matchType)
}

// MatchType 返回角色对应的匹配类型（复数形式）
func (r Role) MatchType() string {
	switch r {
	case RoleCoach:
		return "coaches"
	case RoleAdmin, "":
		return ""
	}
	return string(r) + "s"
}

// Profile 是候选人 / 请求方画像。
//
// 设计要点：
//
//	维度          作用
//	Attributes    球员基础属性（年龄、身高、体重、身价、位置...）
//	Stats         球员能力值（speed / strength / skill ...）
//	Preferences   非球员角色想找的球员画像，与球员属性同轴
//	Features      在线特征（如 Feast）补充的数值特征
type Profile struct {
	ID          string             `json:"id" yaml:"id"`
	Role        Role               `json:"role" yaml:"role"`
	Name        string             `json:"name" yaml:"name"`
	Attributes  map[string]any     `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Stats       map[string]float64 `json:"stats,omitempty" yaml:"stats,omitempty"`
	Preferences map[string]any     `json:"preferences,omitempty" yaml:"preferences,omitempty"`
	Features    map[string]float64 `json:"features,omitempty" yaml:"features,omitempty"`
	UpdateTime  time.Time          `json:"update_time" yaml:"update_time"`
}

// NewProfile 创建一个新的画像
func NewProfile(id string, role Role, name string) *Profile {
	return &Profile{
		ID:          id,
		Role:        role,
		Name:        name,
		Attributes:  make(map[string]any),
		Stats:       make(map[string]float64),
		Preferences: make(map[string]any),
		Features:    make(map[string]float64),
		UpdateTime:  time.Now(),
	}
}

// Position 返回球员位置（未设置时为空串）
func (p *Profile) Position() string {
	if p == nil || p.Attributes == nil {
		return ""
	}
	s, _ := p.Attributes["position"].(string)
	return s
}

// SetFeature 写入在线特征
func (p *Profile) SetFeature(name string, value float64) {
	if p.Features == nil {
		p.Features = make(map[string]float64)
	}
	p.Features[name] = value
	p.UpdateTime = time.Now()
}

// ProfileSource 是画像来源的领域接口，由 profile 包实现
// （profile.MemorySource / profile.SQLSource / profile.FeastSource）。
type ProfileSource interface {
	// Name 返回来源名称（用于日志/监控）
	Name() string

	// Get 读取单个画像，不存在时返回 NOT_FOUND
	Get(ctx context.Context, id string) (*Profile, error)

	// ListByRole 列出指定角色的全部画像，按稳定顺序返回，excludeID 不出现在结果中
	ListByRole(ctx context.Context, role Role, excludeID string) ([]*Profile, error)

	// Close 释放资源
	Close() error
}

// ErrProfileNotFound 表示画像不存在
var ErrProfileNotFound = NewDomainError(ModuleProfile, ErrorCodeNotFound, "profile: not found")
