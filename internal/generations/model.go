package generations

import "time"

// Record is the audit row kept for one relayed generation. It carries no resume content.
type Record struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"requestId"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Outcome     string    `json:"outcome"`
	Fragments   int       `json:"fragments"`
	Bytes       int       `json:"bytes"`
	HasTemplate bool      `json:"hasTemplate"`
	JobDescLen  int       `json:"jobDescriptionLength"`
	DurationMs  int64     `json:"durationMs"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Stats counts generations by outcome since a point in time.
type Stats struct {
	Since     time.Time      `json:"since"`
	Total     int            `json:"total"`
	ByOutcome map[string]int `json:"byOutcome"`
}
