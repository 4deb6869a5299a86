package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

type creatorStore struct {
	pool *pgxpool.Pool
}

const creatorColumns = `id, name, youtube, instagram, linkedin, x_twitter, spotify,
	fields, priority, notes, content_notes, analyzed, created_at, updated_at`

func scanCreator(row pgx.Row) (*entities.Creator, error) {
	var c entities.Creator
	err := row.Scan(
		&c.ID, &c.Name, &c.YouTube, &c.Instagram, &c.LinkedIn, &c.XTwitter, &c.Spotify,
		&c.Fields, &c.Priority, &c.Notes, &c.ContentNotes, &c.Analyzed, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *creatorStore) List(ctx context.Context) ([]entities.Creator, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+creatorColumns+`
		FROM creators
		ORDER BY array_position(ARRAY['VERY HIGH','HIGH','MEDIUM','LOW'], priority), name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCreators(rows)
}

func collectCreators(rows pgx.Rows) ([]entities.Creator, error) {
	var out []entities.Creator
	for rows.Next() {
		c, err := scanCreator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *creatorStore) Get(ctx context.Context, id string) (*entities.Creator, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+creatorColumns+` FROM creators WHERE id = $1`, id)
	return scanCreator(row)
}

func (s *creatorStore) Create(ctx context.Context, creator *entities.Creator) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO creators (name, youtube, instagram, linkedin, x_twitter, spotify,
			fields, priority, notes, content_notes, analyzed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		creator.Name, creator.YouTube, creator.Instagram, creator.LinkedIn, creator.XTwitter,
		creator.Spotify, creator.Fields, creator.Priority, creator.Notes, creator.ContentNotes,
		creator.Analyzed)
	return mapErr(row.Scan(&creator.ID, &creator.CreatedAt, &creator.UpdatedAt))
}

func (s *creatorStore) Update(ctx context.Context, creator *entities.Creator) error {
	row := s.pool.QueryRow(ctx, `
		UPDATE creators
		SET name = $2, youtube = $3, instagram = $4, linkedin = $5, x_twitter = $6,
			spotify = $7, fields = $8, priority = $9, notes = $10, content_notes = $11,
			analyzed = $12, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		creator.ID, creator.Name, creator.YouTube, creator.Instagram, creator.LinkedIn,
		creator.XTwitter, creator.Spotify, creator.Fields, creator.Priority, creator.Notes,
		creator.ContentNotes, creator.Analyzed)
	return mapErr(row.Scan(&creator.CreatedAt, &creator.UpdatedAt))
}

func (s *creatorStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM creators WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows)
	}
	return nil
}

func (s *creatorStore) FindByNameLike(ctx context.Context, name string) ([]entities.Creator, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+creatorColumns+`
		FROM creators
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCreators(rows)
}
