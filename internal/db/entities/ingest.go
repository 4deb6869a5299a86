package entities

import "time"

// Ingest job statuses. A job moves pending -> running -> succeeded|failed.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)

// IngestJob tracks one asynchronous video-summarization request so failures
// are observable instead of fire-and-forget.
type IngestJob struct {
	ID          string     `json:"id" db:"id"`
	VideoURL    string     `json:"video_url" db:"video_url"`
	VideoTitle  *string    `json:"video_title,omitempty" db:"video_title"`
	CreatorName string     `json:"creator_name" db:"creator_name"`
	Status      string     `json:"status" db:"status"`
	Error       *string    `json:"error,omitempty" db:"error"`
	ContentID   *string    `json:"content_id,omitempty" db:"content_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

// Terminal reports whether the job has reached a final status.
func (j *IngestJob) Terminal() bool {
	return j.Status == JobSucceeded || j.Status == JobFailed
}
