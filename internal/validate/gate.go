// Package validate decides whether an extracted record is worth persisting:
// a business email and a live company website are required.
package validate

import (
	"context"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/normalize"
)

// Decision is the result of running the gate on one record.
type Decision struct {
	Passed  bool
	Reason  string
	Website string
	Check   *model.WebsiteCheck
}

// Gate runs the ordered validation checks.
type Gate struct {
	websites ReachabilityChecker
}

// NewGate creates a Gate that delegates website checks to rc.
func NewGate(rc ReachabilityChecker) *Gate {
	return &Gate{websites: rc}
}

// Evaluate checks, in order: email present, business email, website present,
// website reachable. The first failing check determines the reason.
func (g *Gate) Evaluate(ctx context.Context, contact model.ContactDraft, company model.CompanyDraft) Decision {
	if contact.Email == "" {
		return Decision{Reason: model.SkipNoEmail}
	}
	if !normalize.IsValidBusinessEmail(contact.Email) {
		return Decision{Reason: model.SkipInvalidEmail}
	}

	website := normalize.WebsiteURL(company.Website)
	if website == "" && company.Domain != "" {
		website = normalize.WebsiteFromDomain(company.Domain)
	}
	if website == "" {
		return Decision{Reason: model.SkipNoWebsite}
	}

	check := g.websites.Check(ctx, website)
	if check == nil || !check.Reachable {
		return Decision{Reason: model.SkipInvalidWebsite, Website: website, Check: check}
	}
	return Decision{Passed: true, Website: website, Check: check}
}
