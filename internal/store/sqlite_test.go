package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-ingest/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestSQLite_CreateAndFindCompany(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	size := 126
	c := &model.Company{
		Name:         "Acme",
		Domain:       "acme.io",
		Website:      "https://acme.io",
		Size:         &size,
		Technologies: []string{"go", "postgres"},
		City:         "Amsterdam",
	}
	require.NoError(t, s.CreateCompany(ctx, c))
	assert.NotEmpty(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := s.FindCompanyByDomain(ctx, "acme.io")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Acme", got.Name)
	require.NotNil(t, got.Size)
	assert.Equal(t, 126, *got.Size)
	assert.Equal(t, []string{"go", "postgres"}, got.Technologies)

	byName, err := s.FindCompanyByName(ctx, "ACME")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, c.ID, byName.ID)
}

func TestSQLite_FindCompany_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	got, err := s.FindCompanyByDomain(context.Background(), "missing.io")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.FindCompanyByName(context.Background(), "Missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_CreateCompany_DuplicateDomain(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCompany(ctx, &model.Company{Name: "Acme", Domain: "acme.io"}))
	err := s.CreateCompany(ctx, &model.Company{Name: "Acme Two", Domain: "acme.io"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSQLite_CreateCompany_EmptyDomainsDoNotCollide(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCompany(ctx, &model.Company{Name: "Bakkerij Jansen"}))
	require.NoError(t, s.CreateCompany(ctx, &model.Company{Name: "Slagerij Pietersen"}))
}

func TestSQLite_LeadLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	c := &model.Company{Name: "Acme", Domain: "acme.io"}
	require.NoError(t, s.CreateCompany(ctx, c))

	added := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := &model.Lead{
		Email:         "jane@acme.io",
		CompanyID:     &c.ID,
		FirstName:     "Jane",
		LastName:      "Doe",
		JobTitle:      "CTO",
		LinkedInURL:   "https://linkedin.com/in/janedoe",
		SourceType:    "apollo",
		IsActive:      true,
		AddedAt:       added,
		LastUpdatedAt: added,
	}
	require.NoError(t, s.InsertLead(ctx, l))
	assert.NotEmpty(t, l.ID)

	byEmail, err := s.FindLeadByEmail(ctx, "jane@acme.io")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, l.ID, byEmail.ID)
	require.NotNil(t, byEmail.CompanyID)
	assert.Equal(t, c.ID, *byEmail.CompanyID)
	assert.True(t, byEmail.AddedAt.Equal(added))

	byLinkedIn, err := s.FindLeadByLinkedIn(ctx, "https://linkedin.com/in/janedoe")
	require.NoError(t, err)
	require.NotNil(t, byLinkedIn)
	assert.Equal(t, l.ID, byLinkedIn.ID)

	byName, err := s.FindLeadByNameAndCompanyDomain(ctx, "jane", "DOE", "acme.io")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, l.ID, byName.ID)

	later := added.Add(time.Hour)
	byEmail.JobTitle = "CEO"
	byEmail.LastUpdatedAt = later
	require.NoError(t, s.UpdateLead(ctx, byEmail))

	updated, err := s.FindLeadByEmail(ctx, "jane@acme.io")
	require.NoError(t, err)
	assert.Equal(t, "CEO", updated.JobTitle)
	assert.True(t, updated.AddedAt.Equal(added))
	assert.True(t, updated.LastUpdatedAt.Equal(later))
}

func TestSQLite_InsertLead_Duplicate(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.InsertLead(ctx, &model.Lead{Email: "jane@acme.io", AddedAt: now, LastUpdatedAt: now}))
	err := s.InsertLead(ctx, &model.Lead{Email: "jane@acme.io", AddedAt: now, LastUpdatedAt: now})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSQLite_FindLeadByLinkedIn_EmptyNeverMatches(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.InsertLead(ctx, &model.Lead{Email: "a@acme.io", AddedAt: now, LastUpdatedAt: now}))

	got, err := s.FindLeadByLinkedIn(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_UpdateLead_NotFound(t *testing.T) {
	s := newTestSQLite(t)
	err := s.UpdateLead(context.Background(), &model.Lead{ID: "nope", LastUpdatedAt: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
