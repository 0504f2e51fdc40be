// Package normalize converts loosely typed, multi-source fields into canonical
// scalar values. Every function is total: malformed input yields the zero
// value ("absent") instead of an error.
package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var multiSpaceRe = regexp.MustCompile(`\s+`)

// SanitizeString trims v and returns "" for absent values. The literal texts
// "null" and "undefined" count as absent. Numbers are rendered in their
// shortest decimal form.
func SanitizeString(v any) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case int32:
		s = strconv.FormatInt(int64(t), 10)
	default:
		return ""
	}
	s = strings.TrimSpace(s)
	switch s {
	case "", "null", "undefined":
		return ""
	}
	return s
}

// collapseSpaces folds every whitespace run into one space.
func collapseSpaces(s string) string {
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}
