package lead

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/store"
)

func newTestWriter(t *testing.T) (*Writer, *store.SQLiteStore, *time.Time) {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "lead.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	w := NewWriter(s)
	w.now = func() time.Time { return clock }
	return w, s, &clock
}

func TestUpsert_InsertThenPatch(t *testing.T) {
	w, s, clock := newTestWriter(t)
	ctx := context.Background()

	id, created, err := w.Upsert(ctx, &model.Lead{
		Email:     " Jane@Acme.io ",
		FirstName: "Jane",
		JobTitle:  "CTO",
		City:      "Amsterdam",
		IsActive:  true,
	})
	require.NoError(t, err)
	assert.True(t, created)
	first := *clock

	*clock = clock.Add(2 * time.Hour)
	again, created, err := w.Upsert(ctx, &model.Lead{
		Email:    "jane@acme.io",
		JobTitle: "CEO",
		IsActive: true,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)

	l, err := s.FindLeadByEmail(ctx, "jane@acme.io")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, "CEO", l.JobTitle)
	assert.Equal(t, "Jane", l.FirstName)
	assert.Equal(t, "Amsterdam", l.City)
	assert.True(t, l.AddedAt.Equal(first))
	assert.True(t, l.LastUpdatedAt.Equal(*clock))
	assert.True(t, l.LastUpdatedAt.After(l.AddedAt))
}

func TestUpsert_SetsCompanyOnPatch(t *testing.T) {
	w, s, _ := newTestWriter(t)
	ctx := context.Background()

	_, _, err := w.Upsert(ctx, &model.Lead{Email: "jane@acme.io"})
	require.NoError(t, err)

	c := &model.Company{Name: "Acme", Domain: "acme.io"}
	require.NoError(t, s.CreateCompany(ctx, c))

	_, _, err = w.Upsert(ctx, &model.Lead{Email: "jane@acme.io", CompanyID: &c.ID})
	require.NoError(t, err)

	l, err := s.FindLeadByEmail(ctx, "jane@acme.io")
	require.NoError(t, err)
	require.NotNil(t, l.CompanyID)
	assert.Equal(t, c.ID, *l.CompanyID)
}

func TestUpsert_RequiresEmail(t *testing.T) {
	w, _, _ := newTestWriter(t)
	_, _, err := w.Upsert(context.Background(), &model.Lead{Email: "  "})
	require.Error(t, err)
}

func TestPatch_KeepsExistingWhenEmpty(t *testing.T) {
	cid := "c-1"
	dst := &model.Lead{FirstName: "Jane", Phone: "+31201234567", CompanyID: &cid}
	patch(dst, &model.Lead{FirstName: "Janet"})
	assert.Equal(t, "Janet", dst.FirstName)
	assert.Equal(t, "+31201234567", dst.Phone)
	require.NotNil(t, dst.CompanyID)
	assert.Equal(t, "c-1", *dst.CompanyID)
}
