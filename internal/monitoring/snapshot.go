package monitoring

import (
	"time"

	"github.com/sells-group/lead-ingest/internal/model"
)

// RunSnapshot is the health view of one finished ingestion run.
type RunSnapshot struct {
	SourceURL      string    `json:"source_url"`
	Processed      int       `json:"processed"`
	Failed         int       `json:"failed"`
	FailRate       float64   `json:"fail_rate"`
	ParseErrors    int       `json:"parse_errors"`
	FilteredOut    int       `json:"filtered_out"`
	NotifyFailures int       `json:"notify_failures"`
	Duration       float64   `json:"duration_secs"`
	CollectedAt    time.Time `json:"collected_at"`
}

// NewRunSnapshot derives a snapshot from run stats. Permanently failed
// entries count toward the attempted total used for FailRate.
func NewRunSnapshot(sourceURL string, stats *model.RunStats, notifyFailures int, elapsed time.Duration) *RunSnapshot {
	failed := len(stats.Failed)
	attempted := stats.Processed + failed
	snap := &RunSnapshot{
		SourceURL:      sourceURL,
		Processed:      stats.Processed,
		Failed:         failed,
		ParseErrors:    stats.ParseErrors,
		FilteredOut:    stats.FilteredOut,
		NotifyFailures: notifyFailures,
		Duration:       elapsed.Seconds(),
		CollectedAt:    time.Now().UTC(),
	}
	if attempted > 0 {
		snap.FailRate = float64(failed) / float64(attempted)
	}
	return snap
}
