package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
	"github.com/branddesk/branddesk-backend/internal/db/memory"
	"github.com/branddesk/branddesk-backend/internal/gateway"
	"github.com/branddesk/branddesk-backend/internal/ingest"
	"github.com/branddesk/branddesk-backend/internal/store"
)

type stubCompleter struct{}

func (stubCompleter) Complete(context.Context, gateway.ChatRequest) (string, error) {
	return "summary", nil
}

func newTestWorker(db *memory.Database, cache *store.Cache) *Worker {
	logger := zap.NewNop().Sugar()
	ingestor := ingest.NewIngestor(ingest.NewTranscriptFetcher(nil), stubCompleter{},
		"fast", "pro", db.Creators(), db.Content(), logger)
	return NewWorker(db.IngestJobs(), ingestor, cache, nil,
		5*time.Millisecond, time.Second, logger)
}

func collectUpdates(t *testing.T, sub *store.Subscription, n int) []StatusUpdate {
	t.Helper()
	updates := make([]StatusUpdate, 0, n)
	deadline := time.After(2 * time.Second)
	for len(updates) < n {
		select {
		case msg := <-sub.Channel():
			var u StatusUpdate
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &u))
			updates = append(updates, u)
		case <-deadline:
			t.Fatalf("timed out after %d of %d updates", len(updates), n)
		}
	}
	return updates
}

func TestWorkerMarksUnfetchableJobFailed(t *testing.T) {
	db := memory.NewDatabase()
	cache := store.NewCache("", zap.NewNop().Sugar(), nil)
	defer cache.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := cache.Subscribe(ctx, store.ChannelJobs)
	defer sub.Close()

	// The URL carries no video id, so the job fails before any network call.
	job := &entities.IngestJob{
		VideoURL:    "https://example.com/not-youtube",
		CreatorName: "Jane",
		Status:      entities.JobPending,
	}
	require.NoError(t, db.IngestJobs().Create(ctx, job))

	w := newTestWorker(db, cache)
	go w.Run(ctx)

	updates := collectUpdates(t, sub, 2)
	assert.Equal(t, entities.JobRunning, updates[0].Status)
	assert.Equal(t, entities.JobFailed, updates[1].Status)
	assert.Equal(t, job.ID, updates[1].JobID)
	assert.NotEmpty(t, updates[1].Error)

	got, err := db.IngestJobs().Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.JobFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.NotNil(t, got.FinishedAt)
}

func TestWorkerDrainsQueueInOneTick(t *testing.T) {
	db := memory.NewDatabase()
	cache := store.NewCache("", zap.NewNop().Sugar(), nil)
	defer cache.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := cache.Subscribe(ctx, store.ChannelJobs)
	defer sub.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, db.IngestJobs().Create(ctx, &entities.IngestJob{
			VideoURL:    "https://example.com/bad",
			CreatorName: "Jane",
			Status:      entities.JobPending,
		}))
	}

	w := newTestWorker(db, cache)
	go w.Run(ctx)

	updates := collectUpdates(t, sub, 6)
	failed := 0
	for _, u := range updates {
		if u.Status == entities.JobFailed {
			failed++
		}
	}
	assert.Equal(t, 3, failed)

	jobs, err := db.IngestJobs().List(ctx, 10)
	require.NoError(t, err)
	for _, j := range jobs {
		assert.True(t, j.Terminal())
	}
}
