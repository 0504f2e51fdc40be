package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
)

var (
	unitWordsRe   = regexp.MustCompile(`(?i)\b(employees|employee|people|staff)\b`)
	nonNumericRe  = regexp.MustCompile(`[^0-9-]`)
	numberRangeRe = regexp.MustCompile(`^(\d+)-(\d+)$`)
)

// ParseNumber reads an employee-count style value. Unit words and separators
// are dropped; a "low-high" range yields its rounded midpoint.
func ParseNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}

	s := SanitizeString(v)
	if s == "" {
		return 0, false
	}
	s = unitWordsRe.ReplaceAllString(s, "")
	s = nonNumericRe.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}

	if m := numberRangeRe.FindStringSubmatch(s); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		return math.Floor((lo+hi)/2 + 0.5), true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseCount is ParseNumber rounded to an int.
func ParseCount(v any) (int, bool) {
	f, ok := ParseNumber(v)
	if !ok {
		return 0, false
	}
	return int(math.Floor(f + 0.5)), true
}

// isTruthy follows JSON truthiness: false, 0, "", and null are false.
func isTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case string:
		return t != ""
	default:
		return true
	}
}
