// Package pipeline runs one ingestion of a bulk lead export: fetch, parse,
// process in chunks, retry failures once, and flush notifications.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-ingest/internal/company"
	"github.com/sells-group/lead-ingest/internal/dedupe"
	"github.com/sells-group/lead-ingest/internal/fetcher"
	"github.com/sells-group/lead-ingest/internal/lead"
	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/notify"
	"github.com/sells-group/lead-ingest/internal/resilience"
	"github.com/sells-group/lead-ingest/internal/store"
	"github.com/sells-group/lead-ingest/internal/validate"
)

// ErrNoValidEntries is returned when the payload holds no parseable record.
var ErrNoValidEntries = eris.New("pipeline: no valid JSON entries")

const (
	defaultBatchSize = 50
	defaultSource    = "apollo"
)

// Deps are the collaborators a Pipeline needs.
type Deps struct {
	Fetcher fetcher.Fetcher
	Store   store.Store
	Checker validate.ReachabilityChecker
	Sink    notify.NotificationSink
}

// Options tune a Pipeline. A zero BatchDelay disables the pause between
// chunks and a zero RunTimeout means no deadline.
type Options struct {
	BatchSize       int
	BatchDelay      time.Duration
	RunTimeout      time.Duration
	SourceType      string
	ClientID        string
	NotifyBatchSize int
}

// Pipeline is the batch orchestrator. It is safe to reuse across runs; all
// per-run state lives in a RunContext.
type Pipeline struct {
	fetcher   fetcher.Fetcher
	sink      notify.NotificationSink
	checker   validate.ReachabilityChecker
	dupes     *dedupe.Resolver
	companies *company.Resolver
	leads     *lead.Writer
	opts      Options
}

// New wires a Pipeline from deps.
func New(deps Deps, opts Options) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.SourceType == "" {
		opts.SourceType = defaultSource
	}
	if opts.NotifyBatchSize <= 0 {
		opts.NotifyBatchSize = notify.DefaultBatchSize
	}
	sink := deps.Sink
	if sink == nil {
		sink = notify.NopSink{}
	}
	return &Pipeline{
		fetcher:   deps.Fetcher,
		sink:      sink,
		checker:   deps.Checker,
		dupes:     dedupe.NewResolver(deps.Store),
		companies: company.NewResolver(deps.Store),
		leads:     lead.NewWriter(deps.Store),
		opts:      opts,
	}
}

// failure is an entry that errored during the main pass.
type failure struct {
	entry fetcher.Entry
	err   error
}

// Run ingests the export at sourceURL. Fetch failures and payloads with no
// parseable entries are fatal. Per-entry errors never abort the run. When ctx
// is cancelled or the run deadline passes, processing stops between entries
// and the partial RunContext is returned with the context error.
func (p *Pipeline) Run(ctx context.Context, sourceURL string) (*RunContext, error) {
	if p.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.RunTimeout)
		defer cancel()
	}

	rc := newRunContext(sourceURL, notify.NewDispatcher(p.sink, p.opts.ClientID, p.opts.NotifyBatchSize))
	rc.gate = validate.NewGate(p.runChecker())
	rc.log.Info("pipeline: starting run")

	rc.enter(model.RunStateFetching)
	resp, err := fetcher.GetOK(ctx, p.fetcher, sourceURL)
	if err != nil {
		return rc, eris.Wrap(err, "pipeline: fetch payload")
	}

	rc.enter(model.RunStateParsing)
	parsed := fetcher.ParseNDJSON(resp.Body)
	for _, le := range parsed.Errors {
		rc.log.Warn("pipeline: unparseable line", zap.Int("line", le.Line), zap.Error(le.Err))
	}
	rc.Stats.ParseErrors = len(parsed.Errors)
	if len(parsed.Entries) == 0 {
		return rc, ErrNoValidEntries
	}
	rc.log.Info("pipeline: parsed payload",
		zap.Int("entries", len(parsed.Entries)),
		zap.Int("skipped_lines", parsed.Skipped),
		zap.Int("parse_errors", len(parsed.Errors)),
	)

	rc.enter(model.RunStateProcessing)
	failures, err := p.processChunks(ctx, rc, parsed.Entries)
	if err != nil {
		abandon(rc, failures)
		p.finish(ctx, rc)
		return rc, eris.Wrap(err, "pipeline: processing interrupted")
	}

	rc.enter(model.RunStateRetrying)
	if pending, err := p.retry(ctx, rc, failures); err != nil {
		abandon(rc, pending)
		p.finish(ctx, rc)
		return rc, eris.Wrap(err, "pipeline: retry interrupted")
	}

	p.finish(ctx, rc)

	result := rc.Stats.Result()
	rc.log.Info("pipeline: run complete",
		zap.Int("processed", result.Processed),
		zap.Int("contacts_created", result.ContactsCreated),
		zap.Int("companies_created", result.CompaniesCreated),
		zap.Int("duplicates_skipped", result.DuplicatesSkipped),
		zap.Int("filtered_out", result.FilteredOut),
		zap.Int("failed", len(rc.Stats.Failed)),
		zap.Duration("elapsed", rc.Elapsed()),
	)
	return rc, nil
}

// finish flushes pending notifications even if ctx is already done.
func (p *Pipeline) finish(ctx context.Context, rc *RunContext) {
	rc.enter(model.RunStateReconciling)
	rc.Notifier.Flush(context.WithoutCancel(ctx))
	rc.enter(model.RunStateDone)
}

func (p *Pipeline) processChunks(ctx context.Context, rc *RunContext, entries []fetcher.Entry) ([]failure, error) {
	var failures []failure
	size := p.opts.BatchSize
	chunks := (len(entries) + size - 1) / size

	for i := 0; i < chunks; i++ {
		start := i * size
		end := min(start+size, len(entries))
		rc.log.Debug("pipeline: processing chunk",
			zap.Int("chunk", i+1),
			zap.Int("of", chunks),
			zap.Int("entries", end-start),
		)

		for _, e := range entries[start:end] {
			if err := ctx.Err(); err != nil {
				return failures, err
			}
			o := p.processEntry(ctx, rc, e)
			rc.tally(o)
			if o.Kind == model.OutcomeError {
				failures = append(failures, failure{entry: e, err: o.Err})
			}
		}

		if i < chunks-1 && p.opts.BatchDelay > 0 {
			if err := resilience.Sleep(ctx, p.opts.BatchDelay); err != nil {
				return failures, err
			}
		}
	}
	return failures, ctx.Err()
}

// retry gives every failed entry exactly one more attempt. When ctx ends
// first, the entries not yet retried are returned with the context error.
func (p *Pipeline) retry(ctx context.Context, rc *RunContext, failures []failure) ([]failure, error) {
	if len(failures) == 0 {
		return nil, nil
	}
	rc.log.Info("pipeline: retrying failed entries", zap.Int("count", len(failures)))

	for i, f := range failures {
		if err := ctx.Err(); err != nil {
			return failures[i:], err
		}
		rc.Stats.Retried++
		o := p.processEntry(ctx, rc, f.entry)
		rc.tally(o)
		if o.Kind != model.OutcomeError {
			continue
		}
		rc.Stats.Failed = append(rc.Stats.Failed, model.FailedEntry{
			Line:          f.entry.Line,
			OriginalError: f.err.Error(),
			RetryError:    o.Err.Error(),
		})
		rc.log.Error("pipeline: entry failed after retry",
			zap.Int("line", f.entry.Line),
			zap.NamedError("original_error", f.err),
			zap.NamedError("retry_error", o.Err),
		)
	}
	return nil, ctx.Err()
}

// runChecker scopes checker state such as memoized verdicts to one run.
func (p *Pipeline) runChecker() validate.ReachabilityChecker {
	if s, ok := p.checker.(validate.RunScoper); ok {
		return s.ForRun()
	}
	return p.checker
}

// abandon records entries that failed but never got their retry because the
// run was interrupted.
func abandon(rc *RunContext, failures []failure) {
	for _, f := range failures {
		rc.Stats.Failed = append(rc.Stats.Failed, model.FailedEntry{
			Line:          f.entry.Line,
			OriginalError: f.err.Error(),
		})
		rc.log.Error("pipeline: entry failed and was not retried",
			zap.Int("line", f.entry.Line),
			zap.NamedError("original_error", f.err),
		)
	}
}
