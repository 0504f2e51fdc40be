package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	payloads []Payload
	err      error
}

func (r *recordingSink) Send(_ context.Context, p Payload) error {
	r.payloads = append(r.payloads, p)
	return r.err
}

func TestDispatcher_LeadBatches(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, "client-1", 50)
	ctx := context.Background()

	for i := range 123 {
		d.AddLead(ctx, fmt.Sprintf("lead-%d", i), "Engineer")
	}
	require.Len(t, sink.payloads, 2)
	d.Flush(ctx)
	require.Len(t, sink.payloads, 3)

	sizes := []int{50, 50, 23}
	for i, p := range sink.payloads {
		lb, ok := p.(LeadBatch)
		require.True(t, ok)
		assert.Equal(t, EventLeadBatch, lb.Type)
		assert.Equal(t, i+1, lb.BatchNumber)
		assert.Equal(t, sizes[i], lb.LeadsInBatch)
		assert.Len(t, lb.LeadIDs, sizes[i])
		assert.Len(t, lb.JobTitles, sizes[i])
		assert.Equal(t, "client-1", lb.ClientID)
	}
	assert.Equal(t, "lead-100", sink.payloads[2].(LeadBatch).LeadIDs[0])

	leads, companies := d.Batches()
	assert.Equal(t, 3, leads)
	assert.Equal(t, 0, companies)
}

func TestDispatcher_CompanyDomainsDeduplicated(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, "client-1", 2)
	ctx := context.Background()

	d.AddCompany(ctx, "c-1", "acme.io")
	d.AddCompany(ctx, "c-1", "acme.io")
	d.AddCompany(ctx, "c-2", "")
	assert.Empty(t, sink.payloads)

	d.AddCompany(ctx, "c-3", "globex.com")
	require.Len(t, sink.payloads, 1)
	cb := sink.payloads[0].(CompanyBatch)
	assert.Equal(t, EventCompanyBatch, cb.Type)
	assert.Equal(t, 1, cb.BatchNumber)
	assert.Equal(t, 2, cb.CompaniesInBatch)
	assert.Equal(t, []string{"acme.io", "globex.com"}, cb.Domains)
	assert.Equal(t, []string{"c-1", "c-3"}, cb.CompanyIDs)
}

func TestDispatcher_IndependentNumbering(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, "", 1)
	ctx := context.Background()

	d.AddLead(ctx, "l-1", "CTO")
	d.AddCompany(ctx, "c-1", "acme.io")
	d.AddLead(ctx, "l-2", "CEO")

	require.Len(t, sink.payloads, 3)
	assert.Equal(t, 1, sink.payloads[0].(LeadBatch).BatchNumber)
	assert.Equal(t, 1, sink.payloads[1].(CompanyBatch).BatchNumber)
	assert.Equal(t, 2, sink.payloads[2].(LeadBatch).BatchNumber)
}

func TestDispatcher_FailuresAreSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("webhook down")}
	d := NewDispatcher(sink, "", 1)

	d.AddLead(context.Background(), "l-1", "CTO")
	d.AddLead(context.Background(), "l-2", "CTO")
	assert.Equal(t, 2, d.Failures())

	leads, _ := d.Batches()
	assert.Equal(t, 2, leads)
}

func TestDispatcher_FlushEmptyIsNoop(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, "", 0)
	d.Flush(context.Background())
	assert.Empty(t, sink.payloads)
	assert.Equal(t, DefaultBatchSize, d.batchSize)
}

func TestDispatcher_NilSink(t *testing.T) {
	d := NewDispatcher(nil, "", 1)
	d.AddLead(context.Background(), "l-1", "CTO")
	assert.Zero(t, d.Failures())
}
