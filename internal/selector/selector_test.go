package selector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
	"github.com/branddesk/branddesk-backend/internal/gateway"
	kvmemory "github.com/branddesk/branddesk-backend/pkg/kv/memory"
)

type fakeCompleter struct {
	response string
	err      error
	calls    int
	lastReq  gateway.ChatRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req gateway.ChatRequest) (string, error) {
	f.calls++
	f.lastReq = req
	return f.response, f.err
}

func sampleCandidates(n int) []entities.ContentSample {
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	out := make([]entities.ContentSample, n)
	for i := range out {
		posted := base.AddDate(0, 0, -i)
		insights := "insight"
		out[i] = entities.ContentSample{
			ID:          string(rune('a' + i)),
			CreatorName: "Creator",
			Platform:    "youtube",
			Content:     "some content body",
			KeyInsights: &insights,
			PostedAt:    &posted,
			CreatedAt:   posted,
		}
	}
	return out
}

func newTestSelector(gw gateway.ChatCompleter) *Selector {
	return New(gw, "test-model", 600, 5, nil, zap.NewNop().Sugar())
}

func TestSelectEmptyCandidates(t *testing.T) {
	fake := &fakeCompleter{}
	s := newTestSelector(fake)

	sel, err := s.Select(context.Background(), "ai agents", nil)
	require.NoError(t, err)
	assert.Empty(t, sel.IDs)
	assert.NotEmpty(t, sel.Reasoning)
	assert.Equal(t, 0, fake.calls, "no model call expected for empty candidates")
}

func TestSelectParsedResponse(t *testing.T) {
	fake := &fakeCompleter{response: `{"selectedIndices":[2,0],"reasoning":"both cover the topic"}`}
	s := newTestSelector(fake)

	sel, err := s.Select(context.Background(), "ai agents", sampleCandidates(4))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, sel.IDs)
	assert.Equal(t, "both cover the topic", sel.Reasoning)
	assert.False(t, sel.Fallback)
	assert.True(t, fake.lastReq.JSONObject)
}

func TestSelectDropsOutOfRangeAndDuplicates(t *testing.T) {
	fake := &fakeCompleter{response: `{"selectedIndices":[1,7,-1,1,0],"reasoning":"r"}`}
	s := newTestSelector(fake)

	sel, err := s.Select(context.Background(), "topic", sampleCandidates(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, sel.IDs)
}

func TestSelectCapsAtMax(t *testing.T) {
	fake := &fakeCompleter{response: `{"selectedIndices":[0,1,2,3,4,5,6],"reasoning":"r"}`}
	s := New(fake, "test-model", 600, 3, nil, zap.NewNop().Sugar())

	sel, err := s.Select(context.Background(), "topic", sampleCandidates(7))
	require.NoError(t, err)
	assert.Len(t, sel.IDs, 3)
}

func TestSelectGatewayErrorFallsBack(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("boom")}
	s := newTestSelector(fake)

	sel, err := s.Select(context.Background(), "topic", sampleCandidates(3))
	require.NoError(t, err)
	assert.True(t, sel.Fallback)
	assert.Equal(t, []string{"a", "b", "c"}, sel.IDs, "fallback keeps recency order")
	assert.NotEmpty(t, sel.Reasoning)
}

func TestSelectFallbackCapsAtMax(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("boom")}
	s := newTestSelector(fake)

	sel, err := s.Select(context.Background(), "topic", sampleCandidates(9))
	require.NoError(t, err)
	assert.Len(t, sel.IDs, 5)
}

func TestSelectUnparseableFallsBack(t *testing.T) {
	fake := &fakeCompleter{response: "I picked the best ones for you!"}
	s := newTestSelector(fake)

	sel, err := s.Select(context.Background(), "topic", sampleCandidates(2))
	require.NoError(t, err)
	assert.True(t, sel.Fallback)
	assert.Equal(t, []string{"a", "b"}, sel.IDs)
}

func TestSelectCacheRoundTrip(t *testing.T) {
	fake := &fakeCompleter{response: `{"selectedIndices":[0],"reasoning":"r"}`}
	cache := kvmemory.NewStore()
	s := New(fake, "test-model", 600, 5, cache, zap.NewNop().Sugar())

	candidates := sampleCandidates(2)
	first, err := s.Select(context.Background(), "topic", candidates)
	require.NoError(t, err)

	second, err := s.Select(context.Background(), "topic", candidates)
	require.NoError(t, err)
	assert.Equal(t, first.IDs, second.IDs)
	assert.Equal(t, 1, fake.calls, "second call should hit the cache")
}

func TestFormatEntry(t *testing.T) {
	posted := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	insights := "agents are eating software"
	entry := formatEntry(3, entities.ContentSample{
		CreatorName: "Jane Doe",
		Platform:    "linkedin",
		Content:     "long body",
		KeyInsights: &insights,
		PostedAt:    &posted,
	}, 600)

	assert.Contains(t, entry, "[3] Jane Doe (linkedin) - 2026-02-01: agents are eating software")
	assert.Contains(t, entry, "Preview: long body")
}

func TestPreviewTruncates(t *testing.T) {
	assert.Equal(t, "abc", preview("abc", 5))
	assert.Equal(t, "abcde...", preview("abcdefgh", 5))
}
