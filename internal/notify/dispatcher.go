// Package notify batches run events and delivers them to a webhook. Delivery
// is best-effort: failures are logged and never surface to the caller.
package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultBatchSize is the number of items per outbound call.
const DefaultBatchSize = 50

// Dispatcher accumulates created leads and companies and flushes them in
// numbered batches. It is owned by a single run and is not safe for
// concurrent use.
type Dispatcher struct {
	sink      NotificationSink
	clientID  string
	batchSize int
	now       func() time.Time

	leadIDs    []string
	jobTitles  []string
	companyIDs []string
	domains    []string
	seen       map[string]struct{}

	leadBatches    int
	companyBatches int
	failures       int
}

// NewDispatcher creates a Dispatcher. A nil sink drops everything.
func NewDispatcher(sink NotificationSink, clientID string, batchSize int) *Dispatcher {
	if sink == nil {
		sink = NopSink{}
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Dispatcher{
		sink:      sink,
		clientID:  clientID,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
		seen:      make(map[string]struct{}),
	}
}

// AddLead records a created lead and flushes when the batch is full.
func (d *Dispatcher) AddLead(ctx context.Context, id, jobTitle string) {
	d.leadIDs = append(d.leadIDs, id)
	d.jobTitles = append(d.jobTitles, jobTitle)
	if len(d.leadIDs) >= d.batchSize {
		d.flushLeads(ctx)
	}
}

// AddCompany records a created company. Each domain is announced at most
// once per run; companies without a domain are not announced.
func (d *Dispatcher) AddCompany(ctx context.Context, id, domain string) {
	if domain == "" {
		return
	}
	if _, ok := d.seen[domain]; ok {
		return
	}
	d.seen[domain] = struct{}{}
	d.companyIDs = append(d.companyIDs, id)
	d.domains = append(d.domains, domain)
	if len(d.companyIDs) >= d.batchSize {
		d.flushCompanies(ctx)
	}
}

// Flush sends any partially filled batches.
func (d *Dispatcher) Flush(ctx context.Context) {
	if len(d.leadIDs) > 0 {
		d.flushLeads(ctx)
	}
	if len(d.companyIDs) > 0 {
		d.flushCompanies(ctx)
	}
}

// Batches returns how many lead and company batches were attempted.
func (d *Dispatcher) Batches() (leads, companies int) {
	return d.leadBatches, d.companyBatches
}

// Failures returns how many deliveries failed.
func (d *Dispatcher) Failures() int {
	return d.failures
}

func (d *Dispatcher) flushLeads(ctx context.Context) {
	d.leadBatches++
	p := LeadBatch{
		Type:         EventLeadBatch,
		BatchNumber:  d.leadBatches,
		LeadsInBatch: len(d.leadIDs),
		ClientID:     d.clientID,
		Timestamp:    d.now(),
		LeadIDs:      d.leadIDs,
		JobTitles:    d.jobTitles,
		Message:      fmt.Sprintf("Processed lead batch %d with %d leads", d.leadBatches, len(d.leadIDs)),
	}
	d.leadIDs, d.jobTitles = nil, nil
	d.deliver(ctx, p, p.BatchNumber, p.LeadsInBatch)
}

func (d *Dispatcher) flushCompanies(ctx context.Context) {
	d.companyBatches++
	p := CompanyBatch{
		Type:             EventCompanyBatch,
		BatchNumber:      d.companyBatches,
		CompaniesInBatch: len(d.companyIDs),
		ClientID:         d.clientID,
		Timestamp:        d.now(),
		Domains:          d.domains,
		CompanyIDs:       d.companyIDs,
		Message:          fmt.Sprintf("Processed company batch %d with %d companies", d.companyBatches, len(d.companyIDs)),
	}
	d.companyIDs, d.domains = nil, nil
	d.deliver(ctx, p, p.BatchNumber, p.CompaniesInBatch)
}

func (d *Dispatcher) deliver(ctx context.Context, p Payload, batch, items int) {
	log := zap.L().With(
		zap.String("type", p.EventType()),
		zap.Int("batch_number", batch),
		zap.Int("items", items),
	)
	if err := d.sink.Send(ctx, p); err != nil {
		d.failures++
		log.Warn("notify: batch delivery failed", zap.Error(err))
		return
	}
	log.Info("notify: batch delivered")
}
