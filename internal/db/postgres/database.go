// Package postgres implements the storage interfaces on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/branddesk/branddesk-backend/internal/db/interfaces"
)

type Database struct {
	pool *pgxpool.Pool
}

func NewDatabase(ctx context.Context, dsn string) (*Database, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Database{pool: pool}, nil
}

func (d *Database) Creators() interfaces.CreatorStore       { return &creatorStore{pool: d.pool} }
func (d *Database) Content() interfaces.ContentStore        { return &contentStore{pool: d.pool} }
func (d *Database) StyleGuides() interfaces.StyleGuideStore { return &styleGuideStore{pool: d.pool} }
func (d *Database) HistoricalPosts() interfaces.HistoricalPostStore {
	return &historicalPostStore{pool: d.pool}
}
func (d *Database) GeneratedPosts() interfaces.GeneratedPostStore {
	return &generatedPostStore{pool: d.pool}
}
func (d *Database) IngestJobs() interfaces.IngestJobStore { return &ingestJobStore{pool: d.pool} }

func (d *Database) Ping(ctx context.Context) error { return d.pool.Ping(ctx) }
func (d *Database) Close()                         { d.pool.Close() }

// mapErr translates driver sentinels into storage errors.
func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return interfaces.ErrNotFound
	}
	return err
}

var _ interfaces.Database = (*Database)(nil)
