package normalize

import "strings"

var consumerDomains = map[string]bool{
	"gmail.com":      true,
	"hotmail.com":    true,
	"yahoo.com":      true,
	"outlook.com":    true,
	"icloud.com":     true,
	"aol.com":        true,
	"live.com":       true,
	"msn.com":        true,
	"protonmail.com": true,
}

var disposableDomains = map[string]bool{
	"10minutemail.com":  true,
	"tempmail.org":      true,
	"guerrillamail.com": true,
	"mailinator.com":    true,
	"yopmail.com":       true,
	"temp-mail.org":     true,
}

// freeMailDomains are the providers the company resolver refuses to treat as
// an employer domain.
var freeMailDomains = map[string]bool{
	"gmail.com":   true,
	"hotmail.com": true,
	"yahoo.com":   true,
	"outlook.com": true,
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the lower-cased part after the last "@", or "".
func EmailDomain(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 || i == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[i+1:]))
}

// IsValidBusinessEmail rejects addresses without an "@" and those hosted by
// consumer or disposable mail providers.
func IsValidBusinessEmail(email string) bool {
	if !strings.Contains(email, "@") {
		return false
	}
	d := EmailDomain(email)
	if d == "" {
		return false
	}
	return !consumerDomains[d] && !disposableDomains[d]
}

// IsFreeMailDomain reports whether domain belongs to a free mail provider.
func IsFreeMailDomain(domain string) bool {
	return freeMailDomains[strings.ToLower(domain)]
}
