package pipeline

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/notify"
	"github.com/sells-group/lead-ingest/internal/validate"
)

// RunContext carries the mutable state of one ingestion run. It is created
// per run and passed by reference; nothing about a run lives in package state.
type RunContext struct {
	ID        string
	SourceURL string
	State     model.RunState
	Stats     *model.RunStats
	Notifier  *notify.Dispatcher
	StartedAt time.Time

	enteredAt time.Time
	gate      *validate.Gate
	log       *zap.Logger
}

func newRunContext(sourceURL string, notifier *notify.Dispatcher) *RunContext {
	now := time.Now()
	id := uuid.NewString()
	return &RunContext{
		ID:        id,
		SourceURL: sourceURL,
		State:     model.RunStateIdle,
		Stats:     model.NewRunStats(),
		Notifier:  notifier,
		StartedAt: now,
		enteredAt: now,
		log:       zap.L().With(zap.String("run_id", id), zap.String("source", sourceURL)),
	}
}

// enter moves the run to state and logs how long the previous state took.
func (rc *RunContext) enter(state model.RunState) {
	now := time.Now()
	rc.log.Info("pipeline: state transition",
		zap.String("from", string(rc.State)),
		zap.String("to", string(state)),
		zap.Int64("prev_duration_ms", now.Sub(rc.enteredAt).Milliseconds()),
	)
	rc.State = state
	rc.enteredAt = now
}

// Elapsed returns the time since the run started.
func (rc *RunContext) Elapsed() time.Duration {
	return time.Since(rc.StartedAt)
}

// tally records an outcome. A company created on a path that did not end in
// a new lead is still counted, since a retry will find rather than create it.
func (rc *RunContext) tally(o model.Outcome) {
	rc.Stats.Record(o)
	if o.CompanyCreated && o.Kind != model.OutcomeCreated {
		rc.Stats.CompaniesCreated++
	}
}
