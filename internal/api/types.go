package api

import (
	"time"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreatorRequest is the payload for creating or updating a creator.
type CreatorRequest struct {
	Name         string   `json:"name"`
	YouTube      bool     `json:"youtube"`
	Instagram    bool     `json:"instagram"`
	LinkedIn     bool     `json:"linkedin"`
	XTwitter     bool     `json:"x_twitter"`
	Spotify      bool     `json:"spotify"`
	Fields       []string `json:"fields"`
	Priority     string   `json:"priority"`
	Notes        *string  `json:"notes,omitempty"`
	ContentNotes *string  `json:"content_notes,omitempty"`
	Analyzed     bool     `json:"analyzed"`
}

// ContentSampleRequest is the payload for adding a content sample. The
// creator comes from the URL.
type ContentSampleRequest struct {
	Content     string     `json:"content"`
	Platform    string     `json:"platform"`
	SourceURL   *string    `json:"source_url,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	KeyInsights *string    `json:"key_insights,omitempty"`
}

// AddCreatorContentRequest files a content sample under a creator matched by
// name rather than id.
type AddCreatorContentRequest struct {
	CreatorName string     `json:"creator_name"`
	Content     string     `json:"content"`
	Platform    string     `json:"platform"`
	SourceURL   *string    `json:"source_url,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	KeyInsights *string    `json:"key_insights,omitempty"`
}

type StyleGuideRequest struct {
	Content string `json:"content"`
}

type HistoricalPostRequest struct {
	Platform         string     `json:"platform"`
	Content          string     `json:"content"`
	PerformanceNotes *string    `json:"performance_notes,omitempty"`
	PostedAt         *time.Time `json:"posted_at,omitempty"`
}

// GeneratedPostRequest stores an externally drafted post.
type GeneratedPostRequest struct {
	Content  string  `json:"content"`
	Platform string  `json:"platform"`
	Category *string `json:"category,omitempty"`
	Format   *string `json:"format,omitempty"`
	Topic    *string `json:"topic,omitempty"`
}

// MetricsRequest records performance numbers for a published post.
type MetricsRequest struct {
	Views    int64   `json:"views"`
	Likes    int64   `json:"likes"`
	Comments int64   `json:"comments"`
	Shares   int64   `json:"shares"`
	Feedback *string `json:"feedback,omitempty"`
	Rating   *int    `json:"rating,omitempty"`
}

// GeneratedPostDTO augments the stored post with its derived engagement rate.
type GeneratedPostDTO struct {
	entities.GeneratedPost
	EngagementRate *string `json:"engagement_rate,omitempty"`
}

// ContentEntry is a selection candidate supplied by the caller.
type ContentEntry struct {
	ID          string     `json:"id"`
	Content     string     `json:"content"`
	KeyInsights *string    `json:"key_insights,omitempty"`
	Platform    string     `json:"platform"`
	CreatorName string     `json:"creator_name"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
}

type SelectContentRequest struct {
	Topic      string         `json:"topic"`
	Entries    []ContentEntry `json:"entries"`
	MaxResults int            `json:"maxResults,omitempty"`
}

type SelectContentResponse struct {
	SelectedIDs []string `json:"selectedIds"`
	Reasoning   string   `json:"reasoning"`
}

type GenerateContentResponse struct {
	Content     string   `json:"content"`
	PostID      string   `json:"postId,omitempty"`
	SelectedIDs []string `json:"selectedIds,omitempty"`
	Reasoning   string   `json:"reasoning,omitempty"`
}

type IngestVideoRequest struct {
	VideoURL    string  `json:"video_url"`
	VideoTitle  *string `json:"video_title,omitempty"`
	CreatorName string  `json:"creator_name"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
