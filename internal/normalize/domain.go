package normalize

import (
	"net/url"
	"strings"
)

// ExtractDomain pulls a host name out of an email address, a URL, or a bare
// domain. A leading "www." is removed, as are any path, query, or port.
// Results without a dot, shorter than four characters, or containing spaces
// are rejected.
func ExtractDomain(v any) string {
	s := SanitizeString(v)
	if s == "" {
		return ""
	}

	switch {
	case strings.Contains(s, "@") && !strings.Contains(s, "://"):
		s = s[strings.LastIndex(s, "@")+1:]
	case strings.Contains(s, "://"):
		u, err := url.Parse(s)
		if err == nil && u.Hostname() != "" {
			s = u.Hostname()
		} else {
			s = strings.SplitN(s, "://", 2)[1]
		}
	}

	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	for len(s) >= 4 && strings.EqualFold(s[:4], "www.") {
		s = s[4:]
	}

	if !strings.Contains(s, ".") || len(s) <= 3 || strings.ContainsAny(s, " \t") {
		return ""
	}
	return s
}

// NormalizeDomain is ExtractDomain lower-cased. It is idempotent.
func NormalizeDomain(v any) string {
	return strings.ToLower(ExtractDomain(v))
}

// WebsiteFromDomain returns an https URL for a bare domain.
func WebsiteFromDomain(domain string) string {
	if domain == "" {
		return ""
	}
	return "https://" + domain
}

// WebsiteURL returns s as an absolute URL, adding https:// when s has no
// scheme. Paths and queries are kept. Values without a usable host give "".
func WebsiteURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + strings.TrimLeft(s, "/")
	}
	if ExtractDomain(s) == "" {
		return ""
	}
	return s
}
