package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var legalSuffixRe = regexp.MustCompile(`(?i)[\s,]+(inc|ltd|llc|corp|b\.?v|n\.?v|gmbh|sa|sas|sarl)\.?$`)

// NormalizeCompanyName strips a trailing legal-entity suffix, collapses
// whitespace, and title-cases each word.
func NormalizeCompanyName(name string) string {
	n := collapseSpaces(name)
	n = legalSuffixRe.ReplaceAllString(n, "")
	n = collapseSpaces(n)
	if n == "" {
		return ""
	}
	title := cases.Title(language.Und)
	words := strings.Fields(n)
	for i, w := range words {
		words[i] = title.String(w)
	}
	return strings.Join(words, " ")
}

// genericCompanyNames are placeholders that must never seed a name-only lookup.
var genericCompanyNames = map[string]bool{
	"company":       true,
	"unknown":       true,
	"n/a":           true,
	"na":            true,
	"none":          true,
	"self-employed": true,
	"self employed": true,
	"freelance":     true,
	"freelancer":    true,
	"private":       true,
	"confidential":  true,
	"stealth":       true,
}

// IsGenericCompanyName reports whether name is too generic to identify a company.
func IsGenericCompanyName(name string) bool {
	n := strings.ToLower(collapseSpaces(name))
	return n == "" || len(n) < 2 || genericCompanyNames[n]
}
