// Package jobs runs the background worker that drains the ingest job queue.
package jobs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
	"github.com/branddesk/branddesk-backend/internal/db/interfaces"
	"github.com/branddesk/branddesk-backend/internal/ingest"
	"github.com/branddesk/branddesk-backend/internal/metrics"
	"github.com/branddesk/branddesk-backend/internal/store"
)

// StatusUpdate is the payload published on store.ChannelJobs whenever a job
// changes state.
type StatusUpdate struct {
	JobID       string `json:"jobId"`
	Status      string `json:"status"`
	CreatorName string `json:"creatorName,omitempty"`
	ContentID   string `json:"contentId,omitempty"`
	Error       string `json:"error,omitempty"`
}

type Worker struct {
	jobs         interfaces.IngestJobStore
	ingestor     *ingest.Ingestor
	cache        *store.Cache
	metrics      *metrics.Metrics
	pollInterval time.Duration
	jobTimeout   time.Duration
	logger       *zap.SugaredLogger
}

func NewWorker(jobStore interfaces.IngestJobStore, ingestor *ingest.Ingestor, cache *store.Cache,
	m *metrics.Metrics, pollInterval, jobTimeout time.Duration, logger *zap.SugaredLogger) *Worker {
	return &Worker{
		jobs:         jobStore,
		ingestor:     ingestor,
		cache:        cache,
		metrics:      m,
		pollInterval: pollInterval,
		jobTimeout:   jobTimeout,
		logger:       logger,
	}
}

// Run polls for pending jobs until ctx is cancelled. Each tick drains the
// queue so a burst of submissions does not wait a full interval per job.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Infow("Ingest worker started", "poll_interval", w.pollInterval)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infow("Ingest worker stopping")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		job, err := w.jobs.ClaimNextPending(ctx)
		if err != nil {
			if !errors.Is(err, interfaces.ErrNotFound) {
				w.logger.Errorw("Claiming pending job failed", "error", err)
			}
			return
		}
		w.process(ctx, job)

		if ctx.Err() != nil {
			return
		}
	}
}

func (w *Worker) process(ctx context.Context, job *entities.IngestJob) {
	w.publish(ctx, StatusUpdate{JobID: job.ID, Status: entities.JobRunning, CreatorName: job.CreatorName})

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	contentID, err := w.ingestor.Run(jobCtx, job.VideoURL, job.CreatorName)
	if err != nil {
		w.logger.Warnw("Ingest job failed", "job_id", job.ID, "video_url", job.VideoURL, "error", err)
		if markErr := w.jobs.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			w.logger.Errorw("Marking job failed errored", "job_id", job.ID, "error", markErr)
		}
		w.record(ctx, entities.JobFailed)
		w.publish(ctx, StatusUpdate{JobID: job.ID, Status: entities.JobFailed, CreatorName: job.CreatorName, Error: err.Error()})
		return
	}

	if err := w.jobs.MarkSucceeded(ctx, job.ID, contentID); err != nil {
		w.logger.Errorw("Marking job succeeded errored", "job_id", job.ID, "error", err)
	}
	w.record(ctx, entities.JobSucceeded)
	w.publish(ctx, StatusUpdate{JobID: job.ID, Status: entities.JobSucceeded, CreatorName: job.CreatorName, ContentID: contentID})
	w.logger.Infow("Ingest job completed", "job_id", job.ID, "content_id", contentID)
}

func (w *Worker) publish(ctx context.Context, update StatusUpdate) {
	if w.cache == nil {
		return
	}
	if err := w.cache.Publish(ctx, store.ChannelJobs, update); err != nil {
		w.logger.Debugw("Publishing job status failed", "job_id", update.JobID, "error", err)
	}
}

func (w *Worker) record(ctx context.Context, status string) {
	if w.metrics != nil {
		w.metrics.RecordIngestJob(ctx, status)
	}
}
