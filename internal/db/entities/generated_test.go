package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngagementRate(t *testing.T) {
	m := PerformanceMetrics{Views: 1000, Likes: 50, Comments: 30, Shares: 20}
	assert.Equal(t, "0.1", m.EngagementRate().String())

	m = PerformanceMetrics{Views: 3, Likes: 1}
	assert.Equal(t, "0.3333", m.EngagementRate().String())

	m = PerformanceMetrics{Likes: 100}
	assert.True(t, m.EngagementRate().IsZero(), "zero views must not divide")
}

func TestNeedsMetrics(t *testing.T) {
	now := time.Now()
	week := 7 * 24 * time.Hour
	old := now.Add(-10 * 24 * time.Hour)
	fresh := now.Add(-time.Hour)

	cases := []struct {
		name string
		post GeneratedPost
		want bool
	}{
		{"unpublished", GeneratedPost{}, false},
		{"published recently", GeneratedPost{WasPublished: true, PublishedAt: &fresh}, false},
		{"published long ago, no metrics", GeneratedPost{WasPublished: true, PublishedAt: &old}, true},
		{"published long ago, has metrics", GeneratedPost{
			WasPublished: true, PublishedAt: &old, Metrics: &PerformanceMetrics{Views: 1},
		}, false},
		{"published flag without timestamp", GeneratedPost{WasPublished: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.post.NeedsMetrics(now, week))
		})
	}
}

func TestCreatorHasField(t *testing.T) {
	c := Creator{Fields: []string{"AI", "startups"}}
	assert.True(t, c.HasField("ai"))
	assert.True(t, c.HasField("Startups"))
	assert.False(t, c.HasField("fitness"))
}

func TestJobTerminal(t *testing.T) {
	assert.False(t, (&IngestJob{Status: JobPending}).Terminal())
	assert.False(t, (&IngestJob{Status: JobRunning}).Terminal())
	assert.True(t, (&IngestJob{Status: JobSucceeded}).Terminal())
	assert.True(t, (&IngestJob{Status: JobFailed}).Terminal())
}
