package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

type contentStore struct {
	pool *pgxpool.Pool
}

const contentColumns = `id, creator_id, content, platform, source_url, posted_at, key_insights, created_at`

func scanSample(row pgx.Row) (*entities.ContentSample, error) {
	var c entities.ContentSample
	err := row.Scan(&c.ID, &c.CreatorID, &c.Content, &c.Platform, &c.SourceURL,
		&c.PostedAt, &c.KeyInsights, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *contentStore) ListByCreator(ctx context.Context, creatorID string) ([]entities.ContentSample, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+contentColumns+`
		FROM creator_content
		WHERE creator_id = $1
		ORDER BY COALESCE(posted_at, created_at) DESC`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.ContentSample
	for rows.Next() {
		c, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *contentStore) Get(ctx context.Context, id string) (*entities.ContentSample, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+contentColumns+` FROM creator_content WHERE id = $1`, id)
	return scanSample(row)
}

func (s *contentStore) Create(ctx context.Context, sample *entities.ContentSample) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO creator_content (creator_id, content, platform, source_url, posted_at, key_insights)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		sample.CreatorID, sample.Content, sample.Platform, sample.SourceURL,
		sample.PostedAt, sample.KeyInsights)
	return mapErr(row.Scan(&sample.ID, &sample.CreatedAt))
}

func (s *contentStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM creator_content WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows)
	}
	return nil
}

// ListByField returns samples whose creator covers the given field, newest
// first by posting date. The creator name rides along for prompt building.
func (s *contentStore) ListByField(ctx context.Context, field string, limit int) ([]entities.ContentSample, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cc.id, cc.creator_id, cc.content, cc.platform, cc.source_url,
			cc.posted_at, cc.key_insights, cc.created_at, c.name
		FROM creator_content cc
		JOIN creators c ON c.id = cc.creator_id
		WHERE EXISTS (SELECT 1 FROM unnest(c.fields) f WHERE lower(f) = lower($1))
		ORDER BY COALESCE(cc.posted_at, cc.created_at) DESC
		LIMIT $2`, field, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.ContentSample
	for rows.Next() {
		var c entities.ContentSample
		err := rows.Scan(&c.ID, &c.CreatorID, &c.Content, &c.Platform, &c.SourceURL,
			&c.PostedAt, &c.KeyInsights, &c.CreatedAt, &c.CreatorName)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
