package generations

import (
	"context"
	"errors"
	"strings"
	"time"

	"resume-builder/internal/generation"
)

const (
	maxStatsWindow = 30 * 24 * time.Hour
	maxErrorBytes  = 500
)

// Service records and summarizes generations.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// RecordGeneration stores the audit row for a finished relay.
func (s *Service) RecordGeneration(ctx context.Context, res generation.Result) error {
	if s.Repo == nil {
		return errors.New("missing repo")
	}
	rec := Record{
		ID:          res.ID,
		RequestID:   res.RequestID,
		Provider:    res.Provider,
		Model:       res.Model,
		Outcome:     string(res.Outcome),
		Fragments:   res.Fragments,
		Bytes:       res.Bytes,
		HasTemplate: res.HasTemplate,
		JobDescLen:  res.JobDescLen,
		DurationMs:  res.Duration.Milliseconds(),
		CreatedAt:   res.StartedAt.UTC(),
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.Now().UTC()
	}
	if res.Err != nil {
		rec.Error = truncate(res.Err.Error(), maxErrorBytes)
	}
	return s.Repo.Create(ctx, rec)
}

// Recent lists the latest records.
func (s *Service) Recent(ctx context.Context, limit int) ([]Record, error) {
	return s.Repo.ListRecent(ctx, limit)
}

// Stats counts records over the trailing window.
func (s *Service) Stats(ctx context.Context, window time.Duration) (Stats, error) {
	if window <= 0 || window > maxStatsWindow {
		return Stats{}, ErrInvalidInput
	}
	since := s.Now().UTC().Add(-window)
	counts, err := s.Repo.CountByOutcome(ctx, since)
	if err != nil {
		return Stats{}, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return Stats{Since: since, Total: total, ByOutcome: counts}, nil
}

// truncate caps s at n bytes and drops invalid UTF-8, including a rune split by the cut.
// Postgres rejects invalid UTF-8 in text columns.
func truncate(s string, n int) string {
	if len(s) > n {
		s = s[:n]
	}
	return strings.ToValidUTF8(s, "")
}

var _ generation.Recorder = (*Service)(nil)
