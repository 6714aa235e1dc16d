package provider

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ExtractValue normalizes a numeric value from the various shapes source
// APIs use: JSON numbers, numeric strings ("12", "0.250", "+3"), and nested
// objects like {"total": 15} or {"value": 12.5, "displayValue": "12.5"}.
//
// Returns the scalar float64 value, and ok=false if not extractable.
func ExtractValue(val interface{}) (float64, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return ExtractValue(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		return 0, false
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "+"))
		if s == "" || s == "-" || s == "--" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case map[string]interface{}:
		for _, key := range []string{"value", "total", "all", "count", "default"} {
			if inner, exists := v[key]; exists && inner != nil {
				return ExtractValue(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// ExtractInt is ExtractValue truncated to an int. Fractional counting stats
// ("3.0") are accepted; values outside the int range are not.
func ExtractInt(val interface{}) (int, bool) {
	f, ok := ExtractValue(val)
	if !ok || f >= math.MaxInt || f < math.MinInt {
		return 0, false
	}
	return int(f), true
}

// ExtractString returns a string form of scalars. Integral JSON numbers are
// rendered without a decimal point so numeric ids stay stable ("745455").
func ExtractString(val interface{}) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case map[string]interface{}:
		// NHL localized strings: {"default": "Connor McDavid"}
		if inner, ok := v["default"]; ok {
			return ExtractString(inner)
		}
		return "", false
	default:
		return "", false
	}
}

// Lookup walks a dot-separated path through decoded JSON. Numeric segments
// index arrays. Keys may contain "/" or "-" ("completions/passingAttempts").
func Lookup(data map[string]interface{}, path string) (interface{}, bool) {
	if data == nil || path == "" {
		return nil, false
	}
	var cur interface{} = data
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]interface{}:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []interface{}:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

// LookupMap is Lookup for object-valued paths.
func LookupMap(data map[string]interface{}, path string) map[string]interface{} {
	v, _ := Lookup(data, path)
	m, _ := v.(map[string]interface{})
	return m
}

// LookupSlice is Lookup for array-valued paths.
func LookupSlice(data map[string]interface{}, path string) []interface{} {
	v, _ := Lookup(data, path)
	s, _ := v.([]interface{})
	return s
}

// LookupString is Lookup followed by ExtractString.
func LookupString(data map[string]interface{}, path string) string {
	v, _ := Lookup(data, path)
	s, _ := ExtractString(v)
	return s
}

// SplitPair splits a composite "made/attempted" value such as "18/27" or
// "7-15". When the separator is absent or either side is not numeric, both
// results are 0.
func SplitPair(val interface{}, sep string) (int, int) {
	s, ok := val.(string)
	if !ok || sep == "" {
		return 0, 0
	}
	left, right, found := strings.Cut(strings.TrimSpace(s), sep)
	if !found {
		return 0, 0
	}
	a, errA := strconv.Atoi(strings.TrimSpace(left))
	b, errB := strconv.Atoi(strings.TrimSpace(right))
	if errA != nil || errB != nil {
		return 0, 0
	}
	return a, b
}

// ParseMinutes converts "mm:ss" or "33" to fractional minutes.
func ParseMinutes(val interface{}) (float64, bool) {
	s, ok := val.(string)
	if !ok {
		return ExtractValue(val)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	mins, secs, found := strings.Cut(s, ":")
	if !found {
		return ExtractValue(s)
	}
	m, err := strconv.Atoi(mins)
	if err != nil {
		return 0, false
	}
	sec, err := strconv.Atoi(secs)
	if err != nil {
		return 0, false
	}
	return math.Round((float64(m)+float64(sec)/60.0)*100) / 100, true
}

// timeLayouts covers full RFC3339 plus the "2006-01-02T15:04Z" form some ESPN
// endpoints return.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses the timestamp formats used by the source APIs.
func ParseTime(val interface{}) (time.Time, bool) {
	s, ok := val.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// EnumTable maps league-specific categorical codes to canonical values.
type EnumTable struct {
	Values  map[string]string
	Default string
}

// Map returns the canonical value for a code; unknown codes yield Default.
func (e EnumTable) Map(val interface{}) string {
	code, ok := ExtractString(val)
	if ok {
		if v, found := e.Values[code]; found {
			return v
		}
	}
	return e.Default
}
