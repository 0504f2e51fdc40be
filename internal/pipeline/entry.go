package pipeline

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-ingest/internal/company"
	"github.com/sells-group/lead-ingest/internal/dedupe"
	"github.com/sells-group/lead-ingest/internal/extract"
	"github.com/sells-group/lead-ingest/internal/fetcher"
	"github.com/sells-group/lead-ingest/internal/model"
)

// processEntry runs one record through extraction, validation, dedup,
// company resolution and the lead upsert. It never panics; any failure is
// returned as an error outcome.
func (p *Pipeline) processEntry(ctx context.Context, rc *RunContext, e fetcher.Entry) (o model.Outcome) {
	log := rc.log.With(zap.Int("line", e.Line))

	defer func() {
		if r := recover(); r != nil {
			o = model.Outcome{Kind: model.OutcomeError, Err: eris.Errorf("pipeline: panic processing entry: %v", r)}
		}
		fields := []zap.Field{zap.String("outcome", string(o.Kind))}
		switch o.Kind {
		case model.OutcomeError:
			log.Warn("pipeline: entry failed", append(fields, zap.Error(o.Err))...)
		case model.OutcomeSkipped:
			log.Debug("pipeline: entry skipped", append(fields, zap.String("reason", o.Reason))...)
		default:
			log.Debug("pipeline: entry processed", fields...)
		}
	}()

	contact, draft := extract.Record(e.Record)
	log = log.With(zap.String("email", contact.Email))

	decision := rc.gate.Evaluate(ctx, contact, draft)
	if err := ctx.Err(); err != nil {
		// A website fetch cut short by the run deadline is not a verdict.
		return errOutcome(err, "validate")
	}
	if !decision.Passed {
		return model.Outcome{Kind: model.OutcomeSkipped, Reason: decision.Reason}
	}
	if draft.Website == "" {
		draft.Website = decision.Website
	}

	match, err := p.dupes.Find(ctx, contact, company.CandidateDomain(contact, draft))
	if err != nil {
		return errOutcome(err, "dedupe")
	}
	if match.Found {
		return model.Outcome{
			Kind:        model.OutcomeDuplicate,
			DuplicateOf: match.ExistingID,
			DuplicateBy: string(match.Method),
		}
	}

	res, err := p.companies.Resolve(ctx, contact, draft)
	if err != nil {
		return errOutcome(err, "resolve company")
	}
	if res.Created {
		rc.Notifier.AddCompany(ctx, res.CompanyID, res.Domain)
	}

	l := model.LeadFromDraft(contact, res.CompanyID, p.opts.SourceType)
	id, created, err := p.leads.Upsert(ctx, l)
	if err != nil {
		out := errOutcome(err, "upsert lead")
		out.CompanyID, out.CompanyCreated = res.CompanyID, res.Created
		return out
	}
	if !created {
		// Another writer inserted the email between dedup and insert.
		return model.Outcome{
			Kind:           model.OutcomeDuplicate,
			DuplicateOf:    id,
			DuplicateBy:    string(dedupe.MethodEmail),
			CompanyID:      res.CompanyID,
			CompanyCreated: res.Created,
		}
	}

	rc.Notifier.AddLead(ctx, id, l.JobTitle)
	return model.Outcome{
		Kind:           model.OutcomeCreated,
		LeadID:         id,
		CompanyID:      res.CompanyID,
		CompanyCreated: res.Created,
	}
}

func errOutcome(err error, step string) model.Outcome {
	return model.Outcome{Kind: model.OutcomeError, Err: eris.Wrap(err, fmt.Sprintf("pipeline: %s", step))}
}
