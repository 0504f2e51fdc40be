// Package store persists companies and leads. It is the only shared mutable
// resource of an ingestion run; uniqueness of Company.Domain and Lead.Email
// is enforced here and surfaced as ErrDuplicate.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-ingest/internal/model"
)

// ErrDuplicate is returned when an insert collides with a unique key.
var ErrDuplicate = eris.New("store: duplicate key")

// CompanyStore looks up and creates companies. Finders return (nil, nil)
// when nothing matches.
type CompanyStore interface {
	FindCompanyByDomain(ctx context.Context, domain string) (*model.Company, error)
	FindCompanyByName(ctx context.Context, name string) (*model.Company, error)
	// CreateCompany assigns ID and timestamps. A domain collision yields ErrDuplicate.
	CreateCompany(ctx context.Context, c *model.Company) error
}

// LeadStore looks up and writes leads. Finders return (nil, nil) when nothing matches.
type LeadStore interface {
	FindLeadByEmail(ctx context.Context, email string) (*model.Lead, error)
	FindLeadByLinkedIn(ctx context.Context, url string) (*model.Lead, error)
	FindLeadByNameAndCompanyDomain(ctx context.Context, firstName, lastName, domain string) (*model.Lead, error)
	// InsertLead assigns an ID when empty. An email collision yields ErrDuplicate.
	InsertLead(ctx context.Context, l *model.Lead) error
	UpdateLead(ctx context.Context, l *model.Lead) error
}

// Store is the full persistence contract of the pipeline.
type Store interface {
	CompanyStore
	LeadStore

	Migrate(ctx context.Context) error
	Close() error
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
