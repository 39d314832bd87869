package generations

import (
	"context"
	"sync"
	"time"
)

const defaultMemoryCapacity = 500

// MemoryRepo keeps the most recent records in a fixed-size ring and is safe for concurrent use.
type MemoryRepo struct {
	mu    sync.RWMutex
	ring  []Record
	next  int
	count int
}

// NewMemoryRepo constructs a MemoryRepo holding at most capacity records.
func NewMemoryRepo(capacity int) *MemoryRepo {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &MemoryRepo{ring: make([]Record, capacity)}
}

// Create stores the record, evicting the oldest one when full.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.ID == "" {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring[r.next] = rec
	r.next = (r.next + 1) % len(r.ring)
	if r.count < len(r.ring) {
		r.count++
	}
	return nil
}

// ListRecent returns records newest first.
func (r *MemoryRepo) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	r.mu.RLock()
	defer r.mu.RUnlock()
	n := min(limit, r.count)
	out := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.next - i + len(r.ring)) % len(r.ring)
		out = append(out, r.ring[idx])
	}
	return out, nil
}

// CountByOutcome counts retained records created at or after since.
func (r *MemoryRepo) CountByOutcome(ctx context.Context, since time.Time) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for i := 0; i < r.count; i++ {
		rec := r.ring[i]
		if rec.CreatedAt.Before(since) {
			continue
		}
		counts[rec.Outcome]++
	}
	return counts, nil
}

var _ Repo = (*MemoryRepo)(nil)
