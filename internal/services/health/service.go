package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Report is the health payload.
type Report struct {
	OK       bool   `json:"ok"`
	Provider string `json:"provider"`
	History  string `json:"history"`
	PDF      bool   `json:"pdf"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB       Pinger
	Provider string
	PDF      bool
}

// NewService constructs a health service. db may be nil when history is kept in memory.
func NewService(db Pinger, provider string, pdf bool) *Service {
	return &Service{DB: db, Provider: provider, PDF: pdf}
}

// Status reports readiness. A configured database that does not answer makes the service unhealthy;
// a placeholder provider does not, since the process still serves previews and intake.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true, Provider: s.Provider, History: "memory", PDF: s.PDF}
	if s.DB == nil {
		return report
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		report.OK = false
		report.History = "unavailable"
		return report
	}
	report.History = "postgres"
	return report
}
