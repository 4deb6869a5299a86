package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

type historicalPostStore struct {
	pool *pgxpool.Pool
}

func (s *historicalPostStore) List(ctx context.Context) ([]entities.HistoricalPost, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, platform, content, performance_notes, posted_at, created_at
		FROM historical_posts
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.HistoricalPost
	for rows.Next() {
		var p entities.HistoricalPost
		err := rows.Scan(&p.ID, &p.Platform, &p.Content, &p.PerformanceNotes, &p.PostedAt, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *historicalPostStore) Create(ctx context.Context, post *entities.HistoricalPost) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO historical_posts (platform, content, performance_notes, posted_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		post.Platform, post.Content, post.PerformanceNotes, post.PostedAt)
	return mapErr(row.Scan(&post.ID, &post.CreatedAt))
}

func (s *historicalPostStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM historical_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows)
	}
	return nil
}
