package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

type styleGuideStore struct {
	pool *pgxpool.Pool
}

const styleGuideColumns = `id, content, version, is_active, created_at, updated_at`

func scanStyleGuide(row pgx.Row) (*entities.StyleGuide, error) {
	var g entities.StyleGuide
	err := row.Scan(&g.ID, &g.Content, &g.Version, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}

func (s *styleGuideStore) Active(ctx context.Context) (*entities.StyleGuide, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+styleGuideColumns+`
		FROM style_guides
		WHERE is_active
		ORDER BY updated_at DESC
		LIMIT 1`)
	return scanStyleGuide(row)
}

// Save updates the active guide in place, bumping its version, or inserts
// version 1 when none is active yet. Row locking keeps concurrent saves from
// producing duplicate versions.
func (s *styleGuideStore) Save(ctx context.Context, content string) (*entities.StyleGuide, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
		SELECT id FROM style_guides WHERE is_active ORDER BY updated_at DESC LIMIT 1 FOR UPDATE`).
		Scan(&id)

	var row pgx.Row
	switch {
	case err == nil:
		row = tx.QueryRow(ctx, `
			UPDATE style_guides
			SET content = $2, version = version + 1, updated_at = now()
			WHERE id = $1
			RETURNING `+styleGuideColumns, id, content)
	case errors.Is(err, pgx.ErrNoRows):
		row = tx.QueryRow(ctx, `
			INSERT INTO style_guides (content, version, is_active)
			VALUES ($1, 1, true)
			RETURNING `+styleGuideColumns, content)
	default:
		return nil, err
	}

	guide, err := scanStyleGuide(row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return guide, nil
}
