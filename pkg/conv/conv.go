// Package conv 把画像属性、请求参数与节点配置中的松散类型值转换为确定类型。
package conv

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToFloat64 将 any 转为 float64。
// 支持所有整数/无符号整数/浮点宽度、json.Number；bool 视为 1.0/0.0。
// 字符串不做解析，需要解析请使用 ParseFloat64。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case int16:
		return float64(val), true
	case int8:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint8:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// ParseFloat64 是宽松版本的 ToFloat64：在 ToFloat64 基础上额外解析数字字符串（去除首尾空白）。
// 结果为 NaN / ±Inf 时视为不可用，返回 (0, false)。
func ParseFloat64(v any) (float64, bool) {
	var (
		f  float64
		ok bool
	)
	if s, isStr := v.(string); isStr {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		f, ok = parsed, err == nil
	} else {
		f, ok = ToFloat64(v)
	}
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToInt 将数值转为 int，浮点数向零截断；不接受字符串。
func ToInt(v any) (int, bool) {
	if n, ok := v.(int); ok {
		return n, true
	}
	f, ok := ToFloat64(v)
	// float64(math.MaxInt) 向上取整为 2^63，故上界用 >=
	if !ok || math.IsNaN(f) || f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}

// ToString 仅接受 string
func ToString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// SliceAnyToString 将 []string 或 []any 转为 []string：字符串原样保留，
// 数字按最短形式格式化（12.0 → "12"），其他元素被跳过。
func SliceAnyToString(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			if s, ok := e.(string); ok {
				out = append(out, s)
				continue
			}
			if f, ok := ToFloat64(e); ok {
				out = append(out, strconv.FormatFloat(f, 'f', -1, 64))
			}
		}
		return out
	}
	return nil
}

// ConfigGet 从节点配置（YAML / JSON 解析结果）按 key 取 T，缺失或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if t, ok := m[key].(T); ok {
		return t
	}
	return defaultVal
}

// ConfigGetInt 取 int，兼容 YAML / JSON 解析出的 float64
func ConfigGetInt(m map[string]any, key string, defaultVal int) int {
	if n, ok := ToInt(m[key]); ok {
		return n
	}
	return defaultVal
}

// ConfigGetFloat64 取 float64，兼容整数写法
func ConfigGetFloat64(m map[string]any, key string, defaultVal float64) float64 {
	if f, ok := ToFloat64(m[key]); ok {
		return f
	}
	return defaultVal
}
