package company

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "company.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResolve_EmailDomainTierCreates(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	res, err := r.Resolve(ctx,
		model.ContactDraft{Email: "jane@acme.io"},
		model.CompanyDraft{Website: "https://acme.io", City: "Amsterdam"},
	)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, TierEmailDomain, res.Tier)
	assert.Equal(t, "acme.io", res.Domain)

	c, err := s.FindCompanyByDomain(ctx, "acme.io")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, res.CompanyID, c.ID)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "https://acme.io", c.Website)
	assert.Equal(t, "Amsterdam", c.City)
}

func TestResolve_Idempotent(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	contact := model.ContactDraft{Email: "jane@acme.io"}
	draft := model.CompanyDraft{Name: "Acme", Website: "https://acme.io"}

	first, err := r.Resolve(ctx, contact, draft)
	require.NoError(t, err)
	second, err := r.Resolve(ctx, model.ContactDraft{Email: "john@ACME.io"}, draft)
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.CompanyID, second.CompanyID)
}

func TestResolve_EmailDomainOverridesScraped(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	res, err := r.Resolve(context.Background(),
		model.ContactDraft{Email: "jane@acme.io"},
		model.CompanyDraft{Name: "Acme Holding", Domain: "acme-holding.com", Website: "https://acme-holding.com"},
	)
	require.NoError(t, err)
	assert.Equal(t, TierEmailDomain, res.Tier)

	c, err := s.FindCompanyByDomain(context.Background(), "acme.io")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Acme Holding", c.Name)
	assert.Equal(t, "https://acme.io", c.Website)
}

func TestResolve_FreeMailFallsBackToScrapedDomain(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	res, err := r.Resolve(context.Background(),
		model.ContactDraft{Email: "jane@gmail.com"},
		model.CompanyDraft{Name: "Acme", Domain: "https://www.Acme.io/about"},
	)
	require.NoError(t, err)
	assert.Equal(t, TierScrapedDomain, res.Tier)
	assert.Equal(t, "acme.io", res.Domain)
	assert.True(t, res.Created)
}

func TestResolve_NameOnlyTier(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)
	ctx := context.Background()

	first, err := r.Resolve(ctx, model.ContactDraft{Email: "piet@gmail.com"}, model.CompanyDraft{Name: "bakkerij jansen b.v."})
	require.NoError(t, err)
	assert.Equal(t, TierName, first.Tier)
	assert.True(t, first.Created)

	second, err := r.Resolve(ctx, model.ContactDraft{Email: "kees@hotmail.com"}, model.CompanyDraft{Name: "Bakkerij Jansen"})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.CompanyID, second.CompanyID)
}

func TestResolve_NoTierApplies(t *testing.T) {
	r := NewResolver(newTestStore(t))

	tests := []struct {
		name  string
		draft model.CompanyDraft
	}{
		{"nothing", model.CompanyDraft{}},
		{"generic name", model.CompanyDraft{Name: "Self-Employed"}},
		{"scraped equals free mail domain", model.CompanyDraft{Domain: "gmail.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Resolve(context.Background(), model.ContactDraft{Email: "x@gmail.com"}, tt.draft)
			require.NoError(t, err)
			assert.Empty(t, res.CompanyID)
			assert.Equal(t, TierNone, res.Tier)
		})
	}
}

// racingStore simulates another run inserting the same domain between the
// re-check and the insert.
type racingStore struct {
	store.CompanyStore
	winner  *model.Company
	inserts int
	lookups int
}

func (r *racingStore) FindCompanyByDomain(_ context.Context, _ string) (*model.Company, error) {
	r.lookups++
	if r.inserts > 0 {
		return r.winner, nil
	}
	return nil, nil
}

func (r *racingStore) CreateCompany(_ context.Context, _ *model.Company) error {
	r.inserts++
	return store.ErrDuplicate
}

func TestResolve_UniqueViolationReturnsExisting(t *testing.T) {
	rs := &racingStore{winner: &model.Company{ID: "winner", Domain: "acme.io"}}
	res, err := NewResolver(rs).Resolve(context.Background(), model.ContactDraft{Email: "jane@acme.io"}, model.CompanyDraft{})
	require.NoError(t, err)
	assert.Equal(t, "winner", res.CompanyID)
	assert.False(t, res.Created)
	assert.Equal(t, 1, rs.inserts)
	assert.Equal(t, 3, rs.lookups)
}

type failingStore struct {
	store.CompanyStore
}

func (failingStore) FindCompanyByDomain(context.Context, string) (*model.Company, error) {
	return nil, errors.New("db down")
}

func TestResolve_StoreError(t *testing.T) {
	_, err := NewResolver(failingStore{}).Resolve(context.Background(), model.ContactDraft{Email: "jane@acme.io"}, model.CompanyDraft{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestCandidateDomain(t *testing.T) {
	assert.Equal(t, "acme.io", CandidateDomain(model.ContactDraft{Email: "jane@acme.io"}, model.CompanyDraft{Domain: "other.com"}))
	assert.Equal(t, "other.com", CandidateDomain(model.ContactDraft{Email: "jane@gmail.com"}, model.CompanyDraft{Domain: "www.other.com"}))
	assert.Empty(t, CandidateDomain(model.ContactDraft{Email: "jane@gmail.com"}, model.CompanyDraft{}))
}

func TestNameFromDomain(t *testing.T) {
	assert.Equal(t, "Acme", nameFromDomain("acme.io"))
	assert.Equal(t, "Acme Labs", nameFromDomain("acme-labs.co.uk"))
}
