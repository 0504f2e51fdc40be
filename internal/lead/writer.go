// Package lead writes leads with upsert-by-email semantics.
package lead

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/normalize"
	"github.com/sells-group/lead-ingest/internal/store"
)

// Writer inserts leads, patching the existing row when the email is taken.
type Writer struct {
	store store.LeadStore
	now   func() time.Time
}

// NewWriter creates a lead writer.
func NewWriter(s store.LeadStore) *Writer {
	return &Writer{store: s, now: func() time.Time { return time.Now().UTC() }}
}

// Upsert stores l and returns its id and whether a new row was inserted.
// AddedAt is set only on insert; LastUpdatedAt is set on every write.
func (w *Writer) Upsert(ctx context.Context, l *model.Lead) (string, bool, error) {
	l.Email = normalize.NormalizeEmail(l.Email)
	if l.Email == "" {
		return "", false, eris.New("lead: email is required")
	}

	now := w.now()
	l.AddedAt, l.LastUpdatedAt = now, now

	err := w.store.InsertLead(ctx, l)
	if err == nil {
		return l.ID, true, nil
	}
	if !errors.Is(err, store.ErrDuplicate) {
		return "", false, eris.Wrap(err, "lead: insert")
	}

	existing, err := w.store.FindLeadByEmail(ctx, l.Email)
	if err != nil {
		return "", false, eris.Wrap(err, "lead: lookup after conflict")
	}
	if existing == nil {
		return "", false, eris.Errorf("lead: conflicting row for %s not found", l.Email)
	}

	patch(existing, l)
	existing.LastUpdatedAt = now
	if err := w.store.UpdateLead(ctx, existing); err != nil {
		return "", false, eris.Wrap(err, "lead: update")
	}
	return existing.ID, false, nil
}

// patch copies the non-empty fields of src onto dst.
func patch(dst, src *model.Lead) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.FirstName, src.FirstName)
	set(&dst.LastName, src.LastName)
	set(&dst.Phone, src.Phone)
	set(&dst.JobTitle, src.JobTitle)
	set(&dst.Seniority, src.Seniority)
	set(&dst.LinkedInURL, src.LinkedInURL)
	set(&dst.Country, src.Country)
	set(&dst.State, src.State)
	set(&dst.City, src.City)
	set(&dst.SourceType, src.SourceType)
	if src.CompanyID != nil {
		dst.CompanyID = src.CompanyID
	}
	dst.IsActive = src.IsActive || dst.IsActive
}
