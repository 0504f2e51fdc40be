// Package company resolves the owning company of a contact, creating it when
// no existing record matches.
package company

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/normalize"
	"github.com/sells-group/lead-ingest/internal/store"
)

// Tier names the resolution step that produced a company.
type Tier string

const (
	TierNone          Tier = ""
	TierEmailDomain   Tier = "email_domain"
	TierScrapedDomain Tier = "scraped_domain"
	TierName          Tier = "name"
)

// Resolution is the outcome of Resolve. An empty CompanyID means no tier
// applied; the lead is stored without a company.
type Resolution struct {
	CompanyID string
	Domain    string
	Created   bool
	Tier      Tier
}

// Resolver finds or creates companies. Every tier checks, then re-checks
// immediately before insert, and treats a unique-domain violation as a hit.
type Resolver struct {
	store store.CompanyStore
}

// NewResolver creates a company resolver.
func NewResolver(s store.CompanyStore) *Resolver {
	return &Resolver{store: s}
}

// CandidateDomain returns the domain Resolve would key on: the business email
// domain, else the scraped company domain.
func CandidateDomain(contact model.ContactDraft, draft model.CompanyDraft) string {
	if d := businessEmailDomain(contact.Email); d != "" {
		return d
	}
	return normalize.NormalizeDomain(draft.Domain)
}

func businessEmailDomain(email string) string {
	d := normalize.EmailDomain(email)
	if d == "" || normalize.IsFreeMailDomain(d) {
		return ""
	}
	return normalize.NormalizeDomain(d)
}

// Resolve walks the tiers: email domain, then scraped domain, then exact
// company name when no domain exists at all.
func (r *Resolver) Resolve(ctx context.Context, contact model.ContactDraft, draft model.CompanyDraft) (Resolution, error) {
	emailDomain := businessEmailDomain(contact.Email)
	if emailDomain != "" {
		return r.byDomain(ctx, emailDomain, draft, TierEmailDomain)
	}

	scraped := normalize.NormalizeDomain(draft.Domain)
	if scraped != "" && scraped != normalize.EmailDomain(contact.Email) {
		return r.byDomain(ctx, scraped, draft, TierScrapedDomain)
	}
	if scraped != "" {
		return Resolution{}, nil
	}

	name := normalize.NormalizeCompanyName(draft.Name)
	if name == "" || normalize.IsGenericCompanyName(name) {
		return Resolution{}, nil
	}
	return r.byName(ctx, name, draft)
}

func (r *Resolver) byDomain(ctx context.Context, domain string, draft model.CompanyDraft, tier Tier) (Resolution, error) {
	existing, err := r.store.FindCompanyByDomain(ctx, domain)
	if err != nil {
		return Resolution{}, eris.Wrapf(err, "company: lookup %s", domain)
	}
	if existing != nil {
		return Resolution{CompanyID: existing.ID, Domain: domain, Tier: tier}, nil
	}

	c := model.CompanyFromDraft(draft)
	c.Domain = domain
	if c.Name == "" {
		c.Name = nameFromDomain(domain)
	}
	if normalize.NormalizeDomain(c.Website) != domain {
		c.Website = normalize.WebsiteFromDomain(domain)
	}

	id, created, err := r.create(ctx, c)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{CompanyID: id, Domain: domain, Created: created, Tier: tier}, nil
}

func (r *Resolver) byName(ctx context.Context, name string, draft model.CompanyDraft) (Resolution, error) {
	existing, err := r.store.FindCompanyByName(ctx, name)
	if err != nil {
		return Resolution{}, eris.Wrapf(err, "company: lookup name %q", name)
	}
	if existing != nil {
		return Resolution{CompanyID: existing.ID, Tier: TierName}, nil
	}

	c := model.CompanyFromDraft(draft)
	c.Name = name
	c.Domain = ""

	id, created, err := r.create(ctx, c)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{CompanyID: id, Created: created, Tier: TierName}, nil
}

// create re-normalizes the domain, re-checks for a concurrent insert and
// converts a unique violation into the winner's id.
func (r *Resolver) create(ctx context.Context, c *model.Company) (string, bool, error) {
	c.Domain = normalize.NormalizeDomain(c.Domain)

	if existing, err := r.recheck(ctx, c); err != nil {
		return "", false, err
	} else if existing != nil {
		return existing.ID, false, nil
	}

	err := r.store.CreateCompany(ctx, c)
	if errors.Is(err, store.ErrDuplicate) {
		existing, lerr := r.recheck(ctx, c)
		if lerr != nil {
			return "", false, lerr
		}
		if existing == nil {
			return "", false, eris.Wrapf(err, "company: duplicate %s vanished", c.Domain)
		}
		zap.L().Debug("company: lost insert race",
			zap.String("domain", c.Domain),
			zap.String("company_id", existing.ID),
		)
		return existing.ID, false, nil
	}
	if err != nil {
		return "", false, eris.Wrap(err, "company: create")
	}

	zap.L().Info("company: created",
		zap.String("company_id", c.ID),
		zap.String("domain", c.Domain),
		zap.String("name", c.Name),
	)
	return c.ID, true, nil
}

func (r *Resolver) recheck(ctx context.Context, c *model.Company) (*model.Company, error) {
	var (
		existing *model.Company
		err      error
	)
	if c.Domain != "" {
		existing, err = r.store.FindCompanyByDomain(ctx, c.Domain)
	} else {
		existing, err = r.store.FindCompanyByName(ctx, c.Name)
	}
	return existing, eris.Wrap(err, "company: recheck")
}

// nameFromDomain derives a display name from the first domain label:
// "acme-labs.io" becomes "Acme Labs".
func nameFromDomain(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	return normalize.NormalizeCompanyName(strings.ReplaceAll(label, "-", " "))
}
