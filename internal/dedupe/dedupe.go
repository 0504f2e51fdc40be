// Package dedupe decides whether a contact already exists as a lead.
package dedupe

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/normalize"
)

// Method names the signal that matched.
type Method string

const (
	MethodEmail       Method = "email"
	MethodLinkedIn    Method = "linkedin"
	MethodNameCompany Method = "name_company"
)

// Match is the result of Find.
type Match struct {
	Found      bool
	Method     Method
	ExistingID string
}

// LeadFinder is the read side of the lead store.
type LeadFinder interface {
	FindLeadByEmail(ctx context.Context, email string) (*model.Lead, error)
	FindLeadByLinkedIn(ctx context.Context, url string) (*model.Lead, error)
	FindLeadByNameAndCompanyDomain(ctx context.Context, firstName, lastName, domain string) (*model.Lead, error)
}

// Resolver checks a contact against existing leads.
type Resolver struct {
	leads LeadFinder
}

// NewResolver creates a duplicate resolver.
func NewResolver(leads LeadFinder) *Resolver {
	return &Resolver{leads: leads}
}

// Find checks email, then LinkedIn URL, then first name + last name +
// company domain, stopping at the first match. Signals that are empty on
// the contact are skipped.
func (r *Resolver) Find(ctx context.Context, c model.ContactDraft, companyDomain string) (Match, error) {
	if email := normalize.NormalizeEmail(c.Email); email != "" {
		l, err := r.leads.FindLeadByEmail(ctx, email)
		if err != nil {
			return Match{}, eris.Wrap(err, "dedupe: by email")
		}
		if l != nil {
			return Match{Found: true, Method: MethodEmail, ExistingID: l.ID}, nil
		}
	}

	if c.LinkedInURL != "" {
		l, err := r.leads.FindLeadByLinkedIn(ctx, c.LinkedInURL)
		if err != nil {
			return Match{}, eris.Wrap(err, "dedupe: by linkedin")
		}
		if l != nil {
			return Match{Found: true, Method: MethodLinkedIn, ExistingID: l.ID}, nil
		}
	}

	if c.FirstName != "" && c.LastName != "" && companyDomain != "" {
		l, err := r.leads.FindLeadByNameAndCompanyDomain(ctx, c.FirstName, c.LastName, companyDomain)
		if err != nil {
			return Match{}, eris.Wrap(err, "dedupe: by name and company")
		}
		if l != nil {
			return Match{Found: true, Method: MethodNameCompany, ExistingID: l.ID}, nil
		}
	}

	return Match{}, nil
}
