package model

import "time"

// ContactDraft is a candidate contact extracted from a RawRecord.
// Empty strings mean the value was absent in the source.
type ContactDraft struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
	Seniority   string `json:"seniority,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	MobilePhone string `json:"mobile_phone,omitempty"`
	Country     string `json:"country,omitempty"`
	State       string `json:"state,omitempty"`
	City        string `json:"city,omitempty"`
}

// Lead is the marketplace-wide contact record, unique by Email.
// Leads are global; tenant-scoped contacts are created from them elsewhere.
type Lead struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	CompanyID     *string   `json:"company_id,omitempty" db:"company_id"`
	FirstName     string    `json:"first_name,omitempty" db:"first_name"`
	LastName      string    `json:"last_name,omitempty" db:"last_name"`
	Phone         string    `json:"phone,omitempty" db:"phone"`
	JobTitle      string    `json:"job_title,omitempty" db:"job_title"`
	Seniority     string    `json:"seniority,omitempty" db:"seniority"`
	LinkedInURL   string    `json:"linkedin_url,omitempty" db:"linkedin_url"`
	Country       string    `json:"country,omitempty" db:"country"`
	State         string    `json:"state,omitempty" db:"state"`
	City          string    `json:"city,omitempty" db:"city"`
	SourceType    string    `json:"source_type" db:"source_type"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	AddedAt       time.Time `json:"added_at" db:"added_at"`
	LastUpdatedAt time.Time `json:"last_updated_at" db:"last_updated_at"`
}

// LeadFromDraft builds an unsaved Lead from a contact draft.
func LeadFromDraft(c ContactDraft, companyID, sourceType string) *Lead {
	l := &Lead{
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Phone:       c.MobilePhone,
		JobTitle:    c.JobTitle,
		Seniority:   c.Seniority,
		LinkedInURL: c.LinkedInURL,
		Country:     c.Country,
		State:       c.State,
		City:        c.City,
		SourceType:  sourceType,
		IsActive:    true,
	}
	if companyID != "" {
		id := companyID
		l.CompanyID = &id
	}
	return l
}
