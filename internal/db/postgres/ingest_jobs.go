package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

type ingestJobStore struct {
	pool *pgxpool.Pool
}

const jobColumns = `id, video_url, video_title, creator_name, status, error, content_id,
	created_at, started_at, finished_at`

func scanJob(row pgx.Row) (*entities.IngestJob, error) {
	var j entities.IngestJob
	err := row.Scan(&j.ID, &j.VideoURL, &j.VideoTitle, &j.CreatorName, &j.Status,
		&j.Error, &j.ContentID, &j.CreatedAt, &j.StartedAt, &j.FinishedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &j, nil
}

func (s *ingestJobStore) Create(ctx context.Context, job *entities.IngestJob) error {
	if job.Status == "" {
		job.Status = entities.JobPending
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO ingest_jobs (video_url, video_title, creator_name, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		job.VideoURL, job.VideoTitle, job.CreatorName, job.Status)
	return mapErr(row.Scan(&job.ID, &job.CreatedAt))
}

func (s *ingestJobStore) Get(ctx context.Context, id string) (*entities.IngestJob, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM ingest_jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (s *ingestJobStore) List(ctx context.Context, limit int) ([]entities.IngestJob, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM ingest_jobs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.IngestJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// ClaimNextPending atomically flips the oldest pending job to running.
// SKIP LOCKED lets multiple workers poll the same table without contention.
func (s *ingestJobStore) ClaimNextPending(ctx context.Context) (*entities.IngestJob, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE ingest_jobs
		SET status = 'running', started_at = now()
		WHERE id = (
			SELECT id FROM ingest_jobs
			WHERE status = 'pending'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobColumns)
	return scanJob(row)
}

func (s *ingestJobStore) MarkSucceeded(ctx context.Context, id, contentID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE ingest_jobs
		SET status = 'succeeded', content_id = $2, finished_at = now()
		WHERE id = $1`, id, contentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows)
	}
	return nil
}

func (s *ingestJobStore) MarkFailed(ctx context.Context, id, errMsg string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE ingest_jobs
		SET status = 'failed', error = $2, finished_at = now()
		WHERE id = $1`, id, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows)
	}
	return nil
}
