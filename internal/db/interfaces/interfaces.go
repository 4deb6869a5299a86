// Package interfaces defines the storage contracts implemented by the
// database backends.
package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// CreatorStore provides CRUD access to reference creators.
type CreatorStore interface {
	List(ctx context.Context) ([]entities.Creator, error)
	Get(ctx context.Context, id string) (*entities.Creator, error)
	Create(ctx context.Context, creator *entities.Creator) error
	Update(ctx context.Context, creator *entities.Creator) error
	Delete(ctx context.Context, id string) error

	// FindByNameLike returns creators whose name contains the given
	// substring, case-insensitively, in name order.
	FindByNameLike(ctx context.Context, name string) ([]entities.Creator, error)
}

// ContentStore provides access to creator content samples.
type ContentStore interface {
	ListByCreator(ctx context.Context, creatorID string) ([]entities.ContentSample, error)
	Get(ctx context.Context, id string) (*entities.ContentSample, error)
	Create(ctx context.Context, sample *entities.ContentSample) error
	Delete(ctx context.Context, id string) error

	// ListByField returns samples (with creator names) belonging to creators
	// whose topical fields contain the given value, newest first, bounded by
	// limit. The field comparison is case-insensitive.
	ListByField(ctx context.Context, field string, limit int) ([]entities.ContentSample, error)
}

// StyleGuideStore manages the single active style-guide document.
type StyleGuideStore interface {
	// Active returns the active style guide, or ErrNotFound.
	Active(ctx context.Context) (*entities.StyleGuide, error)

	// Save replaces the active document's content and bumps its version by
	// exactly one, or creates version 1 when no active document exists. The
	// whole operation is atomic.
	Save(ctx context.Context, content string) (*entities.StyleGuide, error)
}

// HistoricalPostStore provides access to previously published posts.
type HistoricalPostStore interface {
	List(ctx context.Context) ([]entities.HistoricalPost, error)
	Create(ctx context.Context, post *entities.HistoricalPost) error
	Delete(ctx context.Context, id string) error
}

// GeneratedPostStore tracks generator output and its afterlife.
type GeneratedPostStore interface {
	List(ctx context.Context) ([]entities.GeneratedPost, error)
	Get(ctx context.Context, id string) (*entities.GeneratedPost, error)
	Create(ctx context.Context, post *entities.GeneratedPost) error

	// MarkPublished sets was_published and published_at.
	MarkPublished(ctx context.Context, id string, at time.Time) (*entities.GeneratedPost, error)

	// UpdateMetrics records performance metrics and optional feedback/rating.
	UpdateMetrics(ctx context.Context, id string, metrics entities.PerformanceMetrics, feedback *string, rating *int) (*entities.GeneratedPost, error)

	// ListNeedingMetrics returns published posts older than the cutoff that
	// still have no performance metrics.
	ListNeedingMetrics(ctx context.Context, publishedBefore time.Time) ([]entities.GeneratedPost, error)
}

// IngestJobStore manages the video-summarization job queue.
type IngestJobStore interface {
	Create(ctx context.Context, job *entities.IngestJob) error
	Get(ctx context.Context, id string) (*entities.IngestJob, error)
	List(ctx context.Context, limit int) ([]entities.IngestJob, error)

	// ClaimNextPending atomically marks the oldest pending job as running and
	// returns it, or ErrNotFound when the queue is empty.
	ClaimNextPending(ctx context.Context) (*entities.IngestJob, error)

	MarkSucceeded(ctx context.Context, id, contentID string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
}

// Database bundles the entity stores behind one handle.
type Database interface {
	Creators() CreatorStore
	Content() ContentStore
	StyleGuides() StyleGuideStore
	HistoricalPosts() HistoricalPostStore
	GeneratedPosts() GeneratedPostStore
	IngestJobs() IngestJobStore

	Ping(ctx context.Context) error
	Close()
}
