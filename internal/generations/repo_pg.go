package generations

import (
	"context"
	"database/sql"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a generation record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO generations (
    id, request_id, provider, model, outcome, fragments, bytes, has_template, jd_length, duration_ms, error, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.RequestID,
		rec.Provider,
		rec.Model,
		rec.Outcome,
		rec.Fragments,
		rec.Bytes,
		rec.HasTemplate,
		rec.JobDescLen,
		rec.DurationMs,
		rec.Error,
		rec.CreatedAt,
	)
	return err
}

// ListRecent lists records ordered newest-first.
func (r *PGRepo) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	const query = `
SELECT id, request_id, provider, model, outcome, fragments, bytes, has_template, jd_length, duration_ms, error, created_at
FROM generations
ORDER BY created_at DESC
LIMIT $1`

	rows, err := r.DB.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.Provider,
			&rec.Model,
			&rec.Outcome,
			&rec.Fragments,
			&rec.Bytes,
			&rec.HasTemplate,
			&rec.JobDescLen,
			&rec.DurationMs,
			&rec.Error,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByOutcome groups records created at or after since by outcome.
func (r *PGRepo) CountByOutcome(ctx context.Context, since time.Time) (map[string]int, error) {
	const query = `
SELECT outcome, COUNT(*)
FROM generations
WHERE created_at >= $1
GROUP BY outcome`

	rows, err := r.DB.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
