package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

type generatedPostStore struct {
	pool *pgxpool.Pool
}

const generatedColumns = `id, content, platform, category, format, topic, was_published,
	published_at, views, likes, comments, shares, feedback, rating, created_at`

// Metrics columns are nullable as a group; a NULL views column means no
// metrics have been recorded yet.
func scanGenerated(row pgx.Row) (*entities.GeneratedPost, error) {
	var p entities.GeneratedPost
	var views, likes, comments, shares *int64
	err := row.Scan(&p.ID, &p.Content, &p.Platform, &p.Category, &p.Format, &p.Topic,
		&p.WasPublished, &p.PublishedAt, &views, &likes, &comments, &shares,
		&p.Feedback, &p.Rating, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if views != nil {
		p.Metrics = &entities.PerformanceMetrics{
			Views:    *views,
			Likes:    deref(likes),
			Comments: deref(comments),
			Shares:   deref(shares),
		}
	}
	return &p, nil
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func (s *generatedPostStore) collect(rows pgx.Rows) ([]entities.GeneratedPost, error) {
	defer rows.Close()
	var out []entities.GeneratedPost
	for rows.Next() {
		p, err := scanGenerated(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *generatedPostStore) List(ctx context.Context) ([]entities.GeneratedPost, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+generatedColumns+`
		FROM generated_posts
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

func (s *generatedPostStore) Get(ctx context.Context, id string) (*entities.GeneratedPost, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+generatedColumns+` FROM generated_posts WHERE id = $1`, id)
	return scanGenerated(row)
}

func (s *generatedPostStore) Create(ctx context.Context, post *entities.GeneratedPost) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO generated_posts (content, platform, category, format, topic, was_published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		post.Content, post.Platform, post.Category, post.Format, post.Topic,
		post.WasPublished, post.PublishedAt)
	return mapErr(row.Scan(&post.ID, &post.CreatedAt))
}

func (s *generatedPostStore) MarkPublished(ctx context.Context, id string, at time.Time) (*entities.GeneratedPost, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE generated_posts
		SET was_published = true, published_at = $2
		WHERE id = $1
		RETURNING `+generatedColumns, id, at)
	return scanGenerated(row)
}

func (s *generatedPostStore) UpdateMetrics(ctx context.Context, id string, metrics entities.PerformanceMetrics, feedback *string, rating *int) (*entities.GeneratedPost, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE generated_posts
		SET views = $2, likes = $3, comments = $4, shares = $5,
			feedback = COALESCE($6, feedback), rating = COALESCE($7, rating)
		WHERE id = $1
		RETURNING `+generatedColumns,
		id, metrics.Views, metrics.Likes, metrics.Comments, metrics.Shares, feedback, rating)
	return scanGenerated(row)
}

func (s *generatedPostStore) ListNeedingMetrics(ctx context.Context, publishedBefore time.Time) ([]entities.GeneratedPost, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+generatedColumns+`
		FROM generated_posts
		WHERE was_published AND published_at IS NOT NULL AND views IS NULL
			AND published_at < $1
		ORDER BY published_at`, publishedBefore)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}
