package normalize

import (
	"regexp"
	"sort"
	"strings"
)

var techSplitRe = regexp.MustCompile(`[,;|\n]`)

// ParseCompanyTechnologies accepts a list, an object of flags, or a delimited
// string and returns the technology names it contains.
func ParseCompanyTechnologies(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := SanitizeString(item); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, item := range t {
			if s := SanitizeString(item); s != "" {
				out = append(out, s)
			}
		}
	case map[string]any:
		for k, val := range t {
			if isTruthy(val) && strings.TrimSpace(k) != "" {
				out = append(out, strings.TrimSpace(k))
			}
		}
		sort.Strings(out)
	default:
		s := SanitizeString(v)
		for _, tok := range techSplitRe.Split(s, -1) {
			tok = strings.TrimSpace(tok)
			if len([]rune(tok)) > 1 {
				out = append(out, tok)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
