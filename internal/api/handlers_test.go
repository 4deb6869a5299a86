package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/config"
	"github.com/branddesk/branddesk-backend/internal/content"
	"github.com/branddesk/branddesk-backend/internal/db/entities"
	"github.com/branddesk/branddesk-backend/internal/db/memory"
	"github.com/branddesk/branddesk-backend/internal/gateway"
	"github.com/branddesk/branddesk-backend/internal/generate"
	"github.com/branddesk/branddesk-backend/internal/selector"
	"github.com/branddesk/branddesk-backend/internal/store"
	kvmemory "github.com/branddesk/branddesk-backend/pkg/kv/memory"
)

type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, req gateway.ChatRequest) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fixture struct {
	handler *Handler
	db      *memory.Database
	gw      *fakeCompleter
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop().Sugar()

	db := memory.NewDatabase()
	gw := &fakeCompleter{response: "generated text"}
	cache := store.NewCache("", logger, nil)

	sel := selector.New(gw, "fast", 600, 5, kvmemory.NewStore(), logger)
	retriever := content.NewRetriever(db.Content(), 15, logger)
	gen := generate.New(gw, generate.Models{Fast: "fast", Pro: "pro"},
		db.StyleGuides(), db.HistoricalPosts(), db.GeneratedPosts(), retriever, sel, logger)

	cfg := &config.Config{}
	cfg.Content.MetricsAfterDays = 7

	h := NewHandler(db, sel, gen, cache, nil, nil, cfg, logger)
	m := NewMiddleware(logger, nil)

	return &fixture{
		handler: h,
		db:      db,
		gw:      gw,
		router:  h.Routes(m, nil, 6000, nil),
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreatorCRUD(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/creators", CreatorRequest{
		Name:     "Lenny Rachitsky",
		YouTube:  true,
		Fields:   []string{"product", "startups"},
		Priority: entities.PriorityHigh,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[entities.Creator](t, rec)
	require.NotEmpty(t, created.ID)

	rec = f.do(t, http.MethodGet, "/v1/creators/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[entities.Creator](t, rec)
	assert.Equal(t, "Lenny Rachitsky", got.Name)
	assert.Equal(t, entities.PriorityHigh, got.Priority)

	rec = f.do(t, http.MethodPut, "/v1/creators/"+created.ID, CreatorRequest{
		Name:     "Lenny Rachitsky",
		Priority: entities.PriorityVeryHigh,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[entities.Creator](t, rec)
	assert.Equal(t, entities.PriorityVeryHigh, updated.Priority)

	rec = f.do(t, http.MethodDelete, "/v1/creators/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/creators/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	errResp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "NOT_FOUND", errResp.Code)
}

func TestCreateCreatorRequiresName(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/creators", CreatorRequest{Priority: entities.PriorityLow})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Code)
	assert.Contains(t, errResp.Message, "missing required fields: name")
}

func TestCreatorUnknownPriorityDefaultsToMedium(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/creators", CreatorRequest{Name: "X", Priority: "ultra"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[entities.Creator](t, rec)
	assert.Equal(t, entities.PriorityMedium, created.Priority)
}

func TestAddCreatorContent(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/creators", CreatorRequest{Name: "Sahil Bloom"})
	require.Equal(t, http.StatusCreated, rec.Code)
	creator := decodeBody[entities.Creator](t, rec)

	rec = f.do(t, http.MethodPost, "/v1/creator-content", AddCreatorContentRequest{
		CreatorName: "sahil",
		Content:     "A thread about compounding.",
		Platform:    "X",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	sample := decodeBody[entities.ContentSample](t, rec)
	assert.Equal(t, creator.ID, sample.CreatorID)
	assert.Equal(t, "x", sample.Platform)
}

func TestAddCreatorContentValidationListsFields(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/creator-content", AddCreatorContentRequest{
		Content: "no creator supplied",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeBody[ErrorResponse](t, rec)
	assert.Contains(t, errResp.Message, "missing required fields: creator_name, platform")
	assert.Contains(t, errResp.Message, "present: content")
}

func TestAddCreatorContentUnknownCreator(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/creator-content", AddCreatorContentRequest{
		CreatorName: "nobody",
		Content:     "text",
		Platform:    "linkedin",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	errResp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "CREATOR_NOT_FOUND", errResp.Code)
	assert.Contains(t, errResp.Message, `"nobody"`)
}

func TestStyleGuideVersioning(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/style-guide", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPut, "/v1/style-guide", StyleGuideRequest{Content: "Write plainly."})
	require.Equal(t, http.StatusOK, rec.Code)
	v1 := decodeBody[entities.StyleGuide](t, rec)
	assert.Equal(t, 1, v1.Version)
	assert.True(t, v1.IsActive)

	rec = f.do(t, http.MethodPut, "/v1/style-guide", StyleGuideRequest{Content: "Write even more plainly."})
	require.Equal(t, http.StatusOK, rec.Code)
	v2 := decodeBody[entities.StyleGuide](t, rec)
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, v1.ID, v2.ID)

	rec = f.do(t, http.MethodGet, "/v1/style-guide", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	active := decodeBody[entities.StyleGuide](t, rec)
	assert.Equal(t, "Write even more plainly.", active.Content)
}

func TestCreateGeneratedPostManually(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/posts", GeneratedPostRequest{
		Content:  "Draft written outside the generator",
		Platform: "LinkedIn",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[GeneratedPostDTO](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "linkedin", created.Platform)
	assert.False(t, created.WasPublished)

	rec = f.do(t, http.MethodPost, "/v1/posts", GeneratedPostRequest{Platform: "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeBody[ErrorResponse](t, rec)
	assert.Contains(t, errResp.Message, "missing required fields: content")
}

func TestPublishAndMetricsFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := &entities.GeneratedPost{Content: "hello", Platform: "linkedin"}
	require.NoError(t, f.db.GeneratedPosts().Create(ctx, post))

	rec := f.do(t, http.MethodPost, "/v1/posts/"+post.ID+"/publish", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	published := decodeBody[GeneratedPostDTO](t, rec)
	assert.True(t, published.WasPublished)
	require.NotNil(t, published.PublishedAt)

	rec = f.do(t, http.MethodPut, "/v1/posts/"+post.ID+"/metrics", MetricsRequest{
		Views: 1000, Likes: 50, Comments: 30, Shares: 20,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	withMetrics := decodeBody[GeneratedPostDTO](t, rec)
	require.NotNil(t, withMetrics.EngagementRate)
	assert.Equal(t, "0.1", *withMetrics.EngagementRate)
}

func TestMetricsValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := &entities.GeneratedPost{Content: "hello", Platform: "x"}
	require.NoError(t, f.db.GeneratedPosts().Create(ctx, post))

	rec := f.do(t, http.MethodPut, "/v1/posts/"+post.ID+"/metrics", MetricsRequest{Views: -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	bad := 9
	rec = f.do(t, http.MethodPut, "/v1/posts/"+post.ID+"/metrics", MetricsRequest{Views: 10, Rating: &bad})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNeedsMetricsHonorsGracePeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	overdue := &entities.GeneratedPost{Content: "old", Platform: "linkedin"}
	require.NoError(t, f.db.GeneratedPosts().Create(ctx, overdue))
	_, err := f.db.GeneratedPosts().MarkPublished(ctx, overdue.ID, time.Now().AddDate(0, 0, -10))
	require.NoError(t, err)

	fresh := &entities.GeneratedPost{Content: "new", Platform: "linkedin"}
	require.NoError(t, f.db.GeneratedPosts().Create(ctx, fresh))
	_, err = f.db.GeneratedPosts().MarkPublished(ctx, fresh.ID, time.Now().AddDate(0, 0, -1))
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/v1/posts/needs-metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decodeBody[[]GeneratedPostDTO](t, rec)
	require.Len(t, posts, 1)
	assert.Equal(t, overdue.ID, posts[0].ID)
}

func TestSelectRelevantContentEmptyEntries(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/select-relevant-content", SelectContentRequest{
		Topic: "AI agents",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[SelectContentResponse](t, rec)
	assert.Empty(t, resp.SelectedIDs)
	assert.NotEmpty(t, resp.Reasoning)
	assert.Zero(t, f.gw.calls, "no model call for empty candidates")
}

func TestSelectRelevantContentFallsBackOnGatewayError(t *testing.T) {
	f := newFixture(t)
	f.gw.err = gateway.ErrRateLimited

	rec := f.do(t, http.MethodPost, "/v1/select-relevant-content", SelectContentRequest{
		Topic:      "AI agents",
		MaxResults: 2,
		Entries: []ContentEntry{
			{ID: "a", Content: "one", Platform: "youtube", CreatorName: "A"},
			{ID: "b", Content: "two", Platform: "youtube", CreatorName: "B"},
			{ID: "c", Content: "three", Platform: "youtube", CreatorName: "C"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[SelectContentResponse](t, rec)
	assert.Equal(t, []string{"a", "b"}, resp.SelectedIDs)
}

func TestSelectRelevantContentParsesModelChoice(t *testing.T) {
	f := newFixture(t)
	f.gw.response = `{"selectedIndices": [1], "reasoning": "second entry matches"}`

	rec := f.do(t, http.MethodPost, "/v1/select-relevant-content", SelectContentRequest{
		Topic: "AI agents",
		Entries: []ContentEntry{
			{ID: "a", Content: "one", Platform: "youtube", CreatorName: "A"},
			{ID: "b", Content: "two", Platform: "youtube", CreatorName: "B"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[SelectContentResponse](t, rec)
	assert.Equal(t, []string{"b"}, resp.SelectedIDs)
	assert.Equal(t, "second entry matches", resp.Reasoning)
}

func TestGenerateContentPost(t *testing.T) {
	f := newFixture(t)
	f.gw.response = "**Bold** take on shipping fast"

	rec := f.do(t, http.MethodPost, "/v1/generate-content", GenerateContentRequest{
		Topic: "shipping fast",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[GenerateContentResponse](t, rec)
	assert.Equal(t, "Bold take on shipping fast", resp.Content)
	assert.NotEmpty(t, resp.PostID)

	stored, err := f.db.GeneratedPosts().Get(context.Background(), resp.PostID)
	require.NoError(t, err)
	assert.Equal(t, "linkedin", stored.Platform)
}

func TestGenerateContentRequiresTopic(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/generate-content", GenerateContentRequest{Type: "post"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateContentGatewayStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"rate limited", gateway.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"payment required", gateway.ErrPaymentRequired, http.StatusPaymentRequired, "PAYMENT_REQUIRED"},
		{"other", gateway.ErrEmptyResponse, http.StatusInternalServerError, "GENERATION_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.gw.err = tc.err

			rec := f.do(t, http.MethodPost, "/v1/generate-content", GenerateContentRequest{
				Type:    "reply",
				Comment: "Great post!",
			})
			require.Equal(t, tc.want, rec.Code)
			errResp := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, tc.code, errResp.Code)
		})
	}
}

func TestGenerateContentUnknownType(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/generate-content", GenerateContentRequest{Type: "poem"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestVideoEnqueuesJob(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/ingest/video", IngestVideoRequest{
		VideoURL:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		CreatorName: "Rick",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	job := decodeBody[entities.IngestJob](t, rec)
	assert.Equal(t, entities.JobPending, job.Status)
	require.NotEmpty(t, job.ID)

	rec = f.do(t, http.MethodGet, "/v1/ingest/jobs/"+job.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/ingest/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	jobs := decodeBody[[]entities.IngestJob](t, rec)
	assert.Len(t, jobs, 1)
}

func TestIngestVideoRejectsNonYouTubeURL(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/ingest/video", IngestVideoRequest{
		VideoURL:    "https://example.com/not-a-video",
		CreatorName: "Rick",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleRoundTrip(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/schedule/september", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	doc := map[string]any{"monday": "post", "thursday": "newsletter"}
	rec = f.do(t, http.MethodPut, "/v1/schedule/september", doc)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/schedule/september", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "newsletter", got["thursday"])
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "ready", health.Status)
}
