// Package model defines the records that flow through the lead ingestion pipeline.
package model

import "time"

// RawRecord is one decoded line of an ingestion payload. Field names vary by
// source, so nothing about its shape is assumed.
type RawRecord map[string]any

// CompanyDraft is a candidate company extracted from a RawRecord.
// Empty strings mean the value was absent in the source.
type CompanyDraft struct {
	Name                string   `json:"name,omitempty"`
	Domain              string   `json:"domain,omitempty"`
	Website             string   `json:"website,omitempty"`
	LinkedInURL         string   `json:"linkedin_url,omitempty"`
	ScrapedIndustry     string   `json:"scraped_industry,omitempty"`
	CompanySize         *int     `json:"company_size,omitempty"`
	CompanyPhone        string   `json:"company_phone,omitempty"`
	CompanyTechnologies []string `json:"company_technologies,omitempty"`
	Country             string   `json:"country,omitempty"`
	State               string   `json:"state,omitempty"`
	City                string   `json:"city,omitempty"`
}

// Company is the persisted organization record. Domain is unique when set.
type Company struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Domain         string    `json:"domain,omitempty" db:"domain"`
	Website        string    `json:"website,omitempty" db:"website"`
	LinkedInURL    string    `json:"linkedin_url,omitempty" db:"linkedin_url"`
	Industry       string    `json:"industry,omitempty" db:"industry"`
	Size           *int      `json:"size,omitempty" db:"size"`
	Phone          string    `json:"phone,omitempty" db:"phone"`
	Technologies   []string  `json:"technologies,omitempty" db:"technologies"`
	Country        string    `json:"country,omitempty" db:"country"`
	State          string    `json:"state,omitempty" db:"state"`
	City           string    `json:"city,omitempty" db:"city"`
	FullEnrichment bool      `json:"full_enrichment" db:"full_enrichment"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CompanyFromDraft copies the enrichment fields of a draft into a new Company.
func CompanyFromDraft(d CompanyDraft) *Company {
	return &Company{
		Name:         d.Name,
		Domain:       d.Domain,
		Website:      d.Website,
		LinkedInURL:  d.LinkedInURL,
		Industry:     d.ScrapedIndustry,
		Size:         d.CompanySize,
		Phone:        d.CompanyPhone,
		Technologies: d.CompanyTechnologies,
		Country:      d.Country,
		State:        d.State,
		City:         d.City,
	}
}
