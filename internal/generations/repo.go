package generations

import (
	"context"
	"time"
)

// Repo defines persistence operations for generation records.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	CountByOutcome(ctx context.Context, since time.Time) (map[string]int, error)
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
