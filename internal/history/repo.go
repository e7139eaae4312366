package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/njg37/video-generator-backend/internal/domain"
)

// Repository records finished generations in PostgreSQL. The store is
// optional: when no pool is configured every method is a no-op and List
// returns nothing.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a generation history repository. pool may be nil.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Enabled reports whether a database pool is configured.
func (r *Repository) Enabled() bool {
	return r != nil && r.pool != nil
}

// EnsureSchema creates the generations table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}
	query := `
CREATE TABLE IF NOT EXISTS generations (
    id          uuid PRIMARY KEY,
    theme       text NOT NULL,
    source      text NOT NULL,
    audio_key   text NOT NULL,
    video_name  text NOT NULL,
    elapsed_ms  bigint NOT NULL,
    created_at  timestamptz NOT NULL DEFAULT NOW()
);
`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("history: ensure schema: %w", err)
	}
	return nil
}

// Record inserts one generation row.
func (r *Repository) Record(ctx context.Context, gen domain.Generation) error {
	if !r.Enabled() {
		return nil
	}
	if gen.ID == "" {
		gen.ID = uuid.NewString()
	}
	query := `
INSERT INTO generations (id, theme, source, audio_key, video_name, elapsed_ms)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := r.pool.Exec(ctx, query,
		gen.ID,
		gen.Theme,
		gen.Source,
		gen.AudioKey,
		gen.VideoName,
		gen.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("history: record generation: %w", err)
	}
	return nil
}

// List returns the most recent generations, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]domain.Generation, error) {
	if !r.Enabled() {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `
SELECT id, theme, source, audio_key, video_name, elapsed_ms, created_at
FROM generations
ORDER BY created_at DESC
LIMIT $1;
`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list generations: %w", err)
	}
	defer rows.Close()

	var items []domain.Generation
	for rows.Next() {
		var gen domain.Generation
		var elapsedMS int64
		if err := rows.Scan(&gen.ID, &gen.Theme, &gen.Source, &gen.AudioKey, &gen.VideoName, &elapsedMS, &gen.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan generation: %w", err)
		}
		gen.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		items = append(items, gen)
	}
	return items, rows.Err()
}
