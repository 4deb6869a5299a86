package entities

import "time"

// ContentSample is one unit of a creator's past content stored for retrieval.
// Samples are immutable after creation; operators may only delete them.
type ContentSample struct {
	ID          string     `json:"id" db:"id"`
	CreatorID   string     `json:"creator_id" db:"creator_id"`
	Content     string     `json:"content" db:"content"`
	Platform    string     `json:"platform" db:"platform"`
	SourceURL   *string    `json:"source_url,omitempty" db:"source_url"`
	PostedAt    *time.Time `json:"posted_at,omitempty" db:"posted_at"`
	KeyInsights *string    `json:"key_insights,omitempty" db:"key_insights"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	// CreatorName is populated on joined reads; it is not a column of
	// creator_content itself.
	CreatorName string `json:"creator_name,omitempty" db:"-"`
}

// StyleGuide is the single active document describing the target voice.
// Saves replace the content wholesale and bump the version by one; at most one
// row is active at a time.
type StyleGuide struct {
	ID        string    `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	Version   int       `json:"version" db:"version"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HistoricalPost is an immutable record of a previously published post, used
// only as negative-example context during generation.
type HistoricalPost struct {
	ID               string     `json:"id" db:"id"`
	Platform         string     `json:"platform" db:"platform"`
	Content          string     `json:"content" db:"content"`
	PerformanceNotes *string    `json:"performance_notes,omitempty" db:"performance_notes"`
	PostedAt         *time.Time `json:"posted_at,omitempty" db:"posted_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}
