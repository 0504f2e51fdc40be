package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyFromDraft(t *testing.T) {
	size := 75
	d := CompanyDraft{
		Name:                "Acme",
		Domain:              "acme.io",
		Website:             "https://acme.io",
		ScrapedIndustry:     "Software",
		CompanySize:         &size,
		CompanyPhone:        "+31201234567",
		CompanyTechnologies: []string{"go", "postgres"},
		City:                "Amsterdam",
	}

	c := CompanyFromDraft(d)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "acme.io", c.Domain)
	assert.Equal(t, "Software", c.Industry)
	require.NotNil(t, c.Size)
	assert.Equal(t, 75, *c.Size)
	assert.Equal(t, []string{"go", "postgres"}, c.Technologies)
	assert.Empty(t, c.ID)
	assert.False(t, c.FullEnrichment)
}

func TestLeadFromDraft(t *testing.T) {
	c := ContactDraft{FirstName: "Jane", LastName: "Doe", Email: "jane@acme.io", MobilePhone: "+31612345678"}

	l := LeadFromDraft(c, "company-1", "apollo")
	require.NotNil(t, l.CompanyID)
	assert.Equal(t, "company-1", *l.CompanyID)
	assert.Equal(t, "+31612345678", l.Phone)
	assert.Equal(t, "apollo", l.SourceType)
	assert.True(t, l.IsActive)

	orphan := LeadFromDraft(c, "", "apollo")
	assert.Nil(t, orphan.CompanyID)
}

func TestRunStats_Record(t *testing.T) {
	s := NewRunStats()
	s.Record(Outcome{Kind: OutcomeCreated, CompanyCreated: true})
	s.Record(Outcome{Kind: OutcomeCreated})
	s.Record(Outcome{Kind: OutcomeDuplicate})
	s.Record(Outcome{Kind: OutcomeSkipped, Reason: SkipInvalidEmail})
	s.Record(Outcome{Kind: OutcomeSkipped, Reason: SkipInvalidEmail})
	s.Record(Outcome{Kind: OutcomeError})

	assert.Equal(t, 5, s.Processed)
	assert.Equal(t, 2, s.ContactsCreated)
	assert.Equal(t, 1, s.CompaniesCreated)
	assert.Equal(t, 1, s.DuplicatesSkipped)
	assert.Equal(t, 2, s.FilteredOut)
	assert.Equal(t, 2, s.SkipReasons[SkipInvalidEmail])
}

func TestRunStats_Result(t *testing.T) {
	s := NewRunStats()
	s.Record(Outcome{Kind: OutcomeCreated, CompanyCreated: true})
	s.Failed = append(s.Failed, FailedEntry{Line: 3, OriginalError: "boom", RetryError: "boom again"})

	r := s.Result()
	assert.Equal(t, 1, r.Processed)
	assert.Equal(t, 1, r.ContactsCreated)
	assert.Equal(t, 1, r.CompaniesCreated)
	assert.Contains(t, r.Message, "1 leads created")
	assert.Contains(t, r.Message, "1 failed after retry")
}
