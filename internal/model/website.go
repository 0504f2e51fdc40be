package model

import "time"

// WebsiteCheck is the verdict of scoring a company website.
type WebsiteCheck struct {
	URL       string    `json:"url"`
	Domain    string    `json:"domain"`
	Status    int       `json:"status"`
	Score     int       `json:"score"`
	Threshold int       `json:"threshold"`
	Reachable bool      `json:"reachable"`
	Signals   []string  `json:"signals,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}
