package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
	"github.com/branddesk/branddesk-backend/internal/db/memory"
	"github.com/branddesk/branddesk-backend/internal/gateway"
)

type fakeCompleter struct {
	responses map[string]string
	errs      map[string]error
	models    []string
}

func (f *fakeCompleter) Complete(_ context.Context, req gateway.ChatRequest) (string, error) {
	f.models = append(f.models, req.Model)
	if err := f.errs[req.Model]; err != nil {
		return "", err
	}
	return f.responses[req.Model], nil
}

func newTestIngestor(fake *fakeCompleter, db *memory.Database) *Ingestor {
	transport := &fakeTransport{responses: map[string]string{
		"https://www.youtube.com/watch": watchPage,
		"https://captions.test/track":   captionXML,
	}}
	fetcher := NewTranscriptFetcher(&http.Client{Transport: transport})
	return NewIngestor(fetcher, fake, "fast-model", "pro-model",
		db.Creators(), db.Content(), zap.NewNop().Sugar())
}

func TestRunCreatesCreatorAndSample(t *testing.T) {
	db := memory.NewDatabase()
	fake := &fakeCompleter{responses: map[string]string{"fast-model": "insight one. insight two."}}
	in := newTestIngestor(fake, db)

	id, err := in.Run(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "Jane Doe")
	require.NoError(t, err)

	sample, err := db.Content().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "youtube", sample.Platform)
	assert.Equal(t, "Hello & welcome to the channel", sample.Content)
	require.NotNil(t, sample.KeyInsights)
	assert.Equal(t, "insight one. insight two.", *sample.KeyInsights)
	require.NotNil(t, sample.SourceURL)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", *sample.SourceURL)

	creators, err := db.Creators().FindByNameLike(context.Background(), "jane")
	require.NoError(t, err)
	require.Len(t, creators, 1)
	assert.True(t, creators[0].YouTube)
	assert.Equal(t, entities.PriorityMedium, creators[0].Priority)
}

func TestRunMatchesExistingCreatorBySubstring(t *testing.T) {
	db := memory.NewDatabase()
	existing := &entities.Creator{Name: "Jane Doe Official", Priority: entities.PriorityHigh}
	require.NoError(t, db.Creators().Create(context.Background(), existing))

	fake := &fakeCompleter{responses: map[string]string{"fast-model": "summary"}}
	in := newTestIngestor(fake, db)

	id, err := in.Run(context.Background(), "dQw4w9WgXcQ", "jane doe")
	require.NoError(t, err)

	sample, err := db.Content().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, sample.CreatorID)

	all, err := db.Creators().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1, "no duplicate creator should be created")
}

func TestRunRejectsBadURL(t *testing.T) {
	db := memory.NewDatabase()
	in := newTestIngestor(&fakeCompleter{}, db)

	_, err := in.Run(context.Background(), "https://example.com/nope", "Jane")
	assert.ErrorIs(t, err, ErrNoVideoID)
}

func TestSummarizeEscalatesToProModel(t *testing.T) {
	db := memory.NewDatabase()
	fake := &fakeCompleter{
		errs:      map[string]error{"fast-model": statusErr(413)},
		responses: map[string]string{"pro-model": "pro summary"},
	}
	in := newTestIngestor(fake, db)

	id, err := in.Run(context.Background(), "dQw4w9WgXcQ", "Jane")
	require.NoError(t, err)
	assert.Equal(t, []string{"fast-model", "pro-model"}, fake.models)

	sample, err := db.Content().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "pro summary", *sample.KeyInsights)
}

func TestSummarizeDoesNotEscalateOnOtherErrors(t *testing.T) {
	db := memory.NewDatabase()
	boom := errors.New("network down")
	fake := &fakeCompleter{errs: map[string]error{"fast-model": boom}}
	in := newTestIngestor(fake, db)

	_, err := in.Run(context.Background(), "dQw4w9WgXcQ", "Jane")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"fast-model"}, fake.models)
}

func TestShouldEscalate(t *testing.T) {
	for _, status := range []int{400, 413, 500} {
		assert.True(t, shouldEscalate(statusErr(status)), status)
	}
	assert.False(t, shouldEscalate(statusErr(429)))
	assert.False(t, shouldEscalate(errors.New("plain")))
}

// statusErr builds an error carrying an upstream HTTP status the way the
// gateway client surfaces them.
func statusErr(status int) error {
	return fmt.Errorf("gateway: %w", &openai.Error{StatusCode: status})
}
