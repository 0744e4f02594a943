// Package utils 提供匹配链路共用的小工具。
package utils

import "strings"

// Label 记录候选在匹配链路中经过的处理：召回来源、过滤原因、打分后端、推荐理由等。
// Source 为写入它的阶段或组件（recall / filter.blacklist / rank / 角色名 ...）。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"`
}

// MergeLabel 合并同名 Label：Value 以 '|' 累积，Source 以 ',' 累积，空值不参与合并。
func MergeLabel(existing, incoming Label) Label {
	return Label{
		Value:  join(existing.Value, incoming.Value, "|"),
		Source: join(existing.Source, incoming.Source, ","),
	}
}

// Values 返回 Label 累积的全部取值
func (l Label) Values() []string {
	if l.Value == "" {
		return nil
	}
	return strings.Split(l.Value, "|")
}

func join(a, b, sep string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + sep + b
}
