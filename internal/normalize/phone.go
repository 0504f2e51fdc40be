package normalize

import "strings"

// NormalizePhone strips separators and rewrites numbers into international
// form, assuming the Dutch market (+31) for national numbers.
func NormalizePhone(v any) string {
	s := SanitizeString(v)
	if s == "" {
		return ""
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	p := b.String()

	switch {
	case strings.HasPrefix(p, "+"):
		if len(p) < 2 {
			return ""
		}
		return p
	case strings.HasPrefix(p, "00"):
		if len(p) < 4 {
			return ""
		}
		return "+" + p[2:]
	case strings.HasPrefix(p, "31") && len(p) >= 10:
		return "+" + p
	case strings.HasPrefix(p, "0") && len(p) >= 9:
		return "+31" + p[1:]
	case len(p) >= 8:
		return p
	}
	return ""
}
