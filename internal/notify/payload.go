package notify

import "time"

// Event types carried in the "type" field of every payload.
const (
	EventLeadBatch    = "apollo_batch_processed"
	EventCompanyBatch = "company_batch_processed"
)

// Payload is a JSON body delivered to a NotificationSink.
type Payload interface {
	EventType() string
}

// LeadBatch announces a batch of newly created leads.
type LeadBatch struct {
	Type         string    `json:"type"`
	BatchNumber  int       `json:"batch_number"`
	LeadsInBatch int       `json:"leads_in_batch"`
	ClientID     string    `json:"client_id"`
	Timestamp    time.Time `json:"timestamp"`
	LeadIDs      []string  `json:"lead_ids"`
	JobTitles    []string  `json:"job_titles"`
	Message      string    `json:"message"`
}

func (LeadBatch) EventType() string { return EventLeadBatch }

// CompanyBatch announces a batch of newly created companies.
type CompanyBatch struct {
	Type             string    `json:"type"`
	BatchNumber      int       `json:"batch_number"`
	CompaniesInBatch int       `json:"companies_in_batch"`
	ClientID         string    `json:"client_id"`
	Timestamp        time.Time `json:"timestamp"`
	Domains          []string  `json:"domains"`
	CompanyIDs       []string  `json:"company_ids"`
	Message          string    `json:"message"`
}

func (CompanyBatch) EventType() string { return EventCompanyBatch }
