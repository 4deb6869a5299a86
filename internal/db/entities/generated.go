package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PerformanceMetrics holds post-hoc engagement numbers for a published post.
type PerformanceMetrics struct {
	Views    int64 `json:"views" db:"views"`
	Likes    int64 `json:"likes" db:"likes"`
	Comments int64 `json:"comments" db:"comments"`
	Shares   int64 `json:"shares" db:"shares"`
}

// EngagementRate returns (likes+comments+shares)/views, rounded to four
// decimal places. Zero views yields a zero rate.
func (m PerformanceMetrics) EngagementRate() decimal.Decimal {
	if m.Views == 0 {
		return decimal.Zero
	}
	interactions := decimal.NewFromInt(m.Likes + m.Comments + m.Shares)
	return interactions.Div(decimal.NewFromInt(m.Views)).Round(4)
}

// GeneratedPost is the output of the generator, optionally published and
// annotated with performance data after the fact.
type GeneratedPost struct {
	ID           string              `json:"id" db:"id"`
	Content      string              `json:"content" db:"content"`
	Platform     string              `json:"platform" db:"platform"`
	Category     *string             `json:"category,omitempty" db:"category"`
	Format       *string             `json:"format,omitempty" db:"format"`
	Topic        *string             `json:"topic,omitempty" db:"topic"`
	WasPublished bool                `json:"was_published" db:"was_published"`
	PublishedAt  *time.Time          `json:"published_at,omitempty" db:"published_at"`
	Metrics      *PerformanceMetrics `json:"performance_metrics,omitempty" db:"-"`
	Feedback     *string             `json:"feedback,omitempty" db:"feedback"`
	Rating       *int                `json:"rating,omitempty" db:"rating"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
}

// NeedsMetrics reports whether the post has been published for longer than
// the grace period without any performance metrics recorded.
func (p *GeneratedPost) NeedsMetrics(now time.Time, gracePeriod time.Duration) bool {
	if !p.WasPublished || p.PublishedAt == nil || p.Metrics != nil {
		return false
	}
	return now.Sub(*p.PublishedAt) > gracePeriod
}
