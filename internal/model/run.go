package model

import "fmt"

// RunState is a stage of the batch orchestrator.
type RunState string

const (
	RunStateIdle        RunState = "idle"
	RunStateFetching    RunState = "fetching"
	RunStateParsing     RunState = "parsing"
	RunStateProcessing  RunState = "processing_batches"
	RunStateRetrying    RunState = "retrying_failures"
	RunStateReconciling RunState = "reconciling"
	RunStateDone        RunState = "done"
)

// OutcomeKind classifies what happened to a single entry.
type OutcomeKind string

const (
	OutcomeCreated   OutcomeKind = "created"
	OutcomeDuplicate OutcomeKind = "duplicate"
	OutcomeSkipped   OutcomeKind = "skipped"
	OutcomeError     OutcomeKind = "error"
)

// Skip reasons reported by the validation gate.
const (
	SkipNoEmail        = "no_email"
	SkipInvalidEmail   = "invalid_email"
	SkipNoWebsite      = "no_website"
	SkipInvalidWebsite = "invalid_website"
)

// Outcome is the terminal result of processing one entry.
type Outcome struct {
	Kind           OutcomeKind `json:"kind"`
	Reason         string      `json:"reason,omitempty"`
	LeadID         string      `json:"lead_id,omitempty"`
	CompanyID      string      `json:"company_id,omitempty"`
	CompanyCreated bool        `json:"company_created,omitempty"`
	DuplicateOf    string      `json:"duplicate_of,omitempty"`
	DuplicateBy    string      `json:"duplicate_by,omitempty"`
	Err            error       `json:"-"`
}

// FailedEntry is an entry that errored in both the main pass and the retry pass.
type FailedEntry struct {
	Line          int    `json:"line"`
	OriginalError string `json:"original_error"`
	RetryError    string `json:"retry_error"`
}

// RunStats accumulates counters for one ingestion run.
type RunStats struct {
	Processed         int            `json:"processed"`
	ContactsCreated   int            `json:"contacts_created"`
	CompaniesCreated  int            `json:"companies_created"`
	DuplicatesSkipped int            `json:"duplicates_skipped"`
	FilteredOut       int            `json:"filtered_out"`
	ParseErrors       int            `json:"parse_errors"`
	Retried           int            `json:"retried"`
	SkipReasons       map[string]int `json:"skip_reasons,omitempty"`
	Failed            []FailedEntry  `json:"failed,omitempty"`
}

// NewRunStats returns zeroed stats.
func NewRunStats() *RunStats {
	return &RunStats{SkipReasons: make(map[string]int)}
}

// Record tallies a successful-path outcome. Error outcomes are not counted
// here; the orchestrator tracks them for the retry pass.
func (s *RunStats) Record(o Outcome) {
	switch o.Kind {
	case OutcomeCreated:
		s.Processed++
		s.ContactsCreated++
		if o.CompanyCreated {
			s.CompaniesCreated++
		}
	case OutcomeDuplicate:
		s.Processed++
		s.DuplicatesSkipped++
	case OutcomeSkipped:
		s.Processed++
		s.FilteredOut++
		s.SkipReasons[o.Reason]++
	}
}

// RunResult is the summary returned to the caller of a run.
type RunResult struct {
	Processed         int    `json:"processed"`
	ContactsCreated   int    `json:"contactsCreated"`
	CompaniesCreated  int    `json:"companiesCreated"`
	DuplicatesSkipped int    `json:"duplicatesSkipped"`
	FilteredOut       int    `json:"filteredOut"`
	Message           string `json:"message"`
}

// Result converts stats into the caller-facing summary.
func (s *RunStats) Result() RunResult {
	msg := fmt.Sprintf("processed %d entries: %d leads created, %d companies created, %d duplicates skipped, %d filtered out",
		s.Processed, s.ContactsCreated, s.CompaniesCreated, s.DuplicatesSkipped, s.FilteredOut)
	if len(s.Failed) > 0 {
		msg += fmt.Sprintf(", %d failed after retry", len(s.Failed))
	}
	return RunResult{
		Processed:         s.Processed,
		ContactsCreated:   s.ContactsCreated,
		CompaniesCreated:  s.CompaniesCreated,
		DuplicatesSkipped: s.DuplicatesSkipped,
		FilteredOut:       s.FilteredOut,
		Message:           msg,
	}
}
