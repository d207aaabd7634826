package licensesdk

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// keys is an ordered list of candidate wire names for one logical field.
// The first key present in the object wins, so snake_case goes first.
type keys []string

func (k keys) lookup(obj map[string]any) (any, bool) {
	for _, key := range k {
		if v, ok := obj[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (k keys) str(obj map[string]any) string {
	if p := k.optStr(obj); p != nil {
		return *p
	}
	return ""
}

func (k keys) optStr(obj map[string]any) *string {
	v, ok := k.lookup(obj)
	if !ok {
		return nil
	}
	s, ok := asString(v)
	if !ok {
		return nil
	}
	return &s
}

func (k keys) integer(obj map[string]any) int {
	if p := k.optInt(obj); p != nil {
		return *p
	}
	return 0
}

func (k keys) optInt(obj map[string]any) *int {
	v, ok := k.lookup(obj)
	if !ok {
		return nil
	}
	n, ok := asInt(v)
	if !ok {
		return nil
	}
	return &n
}

func (k keys) object(obj map[string]any) map[string]any {
	v, ok := k.lookup(obj)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

func stringField(obj map[string]any, key string) string {
	s, _ := asString(obj[key])
	return s
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		switch {
		case math.IsNaN(t):
			return 0, false
		case t >= math.MaxInt:
			return math.MaxInt, true
		case t <= math.MinInt:
			return math.MinInt, true
		}
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func putOptStr(obj map[string]any, key string, v *string) {
	if v == nil {
		obj[key] = nil
		return
	}
	obj[key] = *v
}

func putOptInt(obj map[string]any, key string, v *int) {
	if v == nil {
		obj[key] = nil
		return
	}
	obj[key] = *v
}
