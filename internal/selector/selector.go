// Package selector picks the content samples most relevant to a topic by
// asking a model to rank an enumerated candidate list. It degrades to a
// deterministic recency fallback whenever the model call or its output is
// unusable, so callers always get a selection.
package selector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
	"github.com/branddesk/branddesk-backend/internal/gateway"
	"github.com/branddesk/branddesk-backend/pkg/kv"
)

const cacheTTL = 10 * time.Minute

// Selection is the outcome of a relevance pass over candidate samples.
type Selection struct {
	// IDs are candidate sample ids in the model's order, deduplicated.
	IDs       []string `json:"selectedIds"`
	Reasoning string   `json:"reasoning"`
	// Fallback is set when the ids came from recency order rather than the
	// model's ranking.
	Fallback bool `json:"fallback"`
}

type Selector struct {
	gw           gateway.ChatCompleter
	model        string
	previewChars int
	maxSelected  int
	cache        kv.Store
	logger       *zap.SugaredLogger
}

func New(gw gateway.ChatCompleter, model string, previewChars, maxSelected int, cache kv.Store, logger *zap.SugaredLogger) *Selector {
	return &Selector{
		gw:           gw,
		model:        model,
		previewChars: previewChars,
		maxSelected:  maxSelected,
		cache:        cache,
		logger:       logger,
	}
}

const systemPrompt = `You are a content strategist. Given a topic and a numbered list of content samples, select the samples most relevant to the topic. Prefer more recent samples when relevance is equal. Respond with a JSON object of the form {"selectedIndices": [0, 2], "reasoning": "..."} and nothing else.`

// Select returns up to the configured maximum of candidate ids ranked by
// relevance to the topic.
func (s *Selector) Select(ctx context.Context, topic string, candidates []entities.ContentSample) (*Selection, error) {
	return s.SelectN(ctx, topic, candidates, s.maxSelected)
}

// SelectN is Select with a per-call result cap; max <= 0 uses the configured
// default. An empty candidate set short-circuits without a model call.
func (s *Selector) SelectN(ctx context.Context, topic string, candidates []entities.ContentSample, max int) (*Selection, error) {
	if max <= 0 {
		max = s.maxSelected
	}
	if len(candidates) == 0 {
		return &Selection{
			IDs:       []string{},
			Reasoning: "No content samples were available to select from.",
		}, nil
	}

	if sel, ok := s.cached(ctx, topic, candidates, max); ok {
		return sel, nil
	}

	raw, err := s.gw.Complete(ctx, gateway.ChatRequest{
		Model:      s.model,
		System:     systemPrompt,
		User:       s.userPrompt(topic, candidates, max),
		JSONObject: true,
	})
	if err != nil {
		s.logger.Warnw("Relevance selection failed, falling back to recency order",
			"topic", topic, "error", err)
		return s.fallback(candidates, max, "Model selection was unavailable; using the most recent samples."), nil
	}

	parsed := parseSelection(raw)
	if parsed.Outcome == ParseFallback {
		s.logger.Warnw("Unparseable selection response, falling back to recency order",
			"topic", topic)
		return s.fallback(candidates, max, "Model response could not be interpreted; using the most recent samples."), nil
	}

	sel := &Selection{
		IDs:       mapIndices(parsed.Indices, candidates, max),
		Reasoning: parsed.Reasoning,
	}
	if sel.Reasoning == "" {
		sel.Reasoning = "Selected by relevance to the topic."
	}
	s.store(ctx, topic, candidates, max, sel)
	return sel, nil
}

func (s *Selector) userPrompt(topic string, candidates []entities.ContentSample, max int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\nContent samples:\n", topic)
	for i, c := range candidates {
		b.WriteString(formatEntry(i, c, s.previewChars))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nSelect up to %d samples by index.", max)
	return b.String()
}

// formatEntry renders one candidate line for the model:
// [i] name (platform) - date: insights, then a truncated preview.
func formatEntry(i int, c entities.ContentSample, previewChars int) string {
	date := c.CreatedAt
	if c.PostedAt != nil {
		date = *c.PostedAt
	}
	insights := "no summary"
	if c.KeyInsights != nil && *c.KeyInsights != "" {
		insights = *c.KeyInsights
	}
	return fmt.Sprintf("[%d] %s (%s) - %s: %s\nPreview: %s\n",
		i, c.CreatorName, c.Platform, date.Format("2006-01-02"), insights,
		preview(c.Content, previewChars))
}

func preview(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "..."
}

// mapIndices converts model indices into candidate ids, dropping anything out
// of range and deduplicating while preserving order. The result is capped at
// max.
func mapIndices(indices []int, candidates []entities.ContentSample, max int) []string {
	seen := make(map[int]bool, len(indices))
	ids := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(candidates) || seen[idx] {
			continue
		}
		seen[idx] = true
		ids = append(ids, candidates[idx].ID)
		if len(ids) == max {
			break
		}
	}
	return ids
}

func (s *Selector) fallback(candidates []entities.ContentSample, max int, reasoning string) *Selection {
	n := max
	if len(candidates) < n {
		n = len(candidates)
	}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = candidates[i].ID
	}
	return &Selection{IDs: ids, Reasoning: reasoning, Fallback: true}
}

func (s *Selector) cacheKey(topic string, candidates []entities.ContentSample, max int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s", max, topic)
	for _, c := range candidates {
		h.Write([]byte("|"))
		h.Write([]byte(c.ID))
	}
	return "selection:" + hex.EncodeToString(h.Sum(nil))
}

func (s *Selector) cached(ctx context.Context, topic string, candidates []entities.ContentSample, max int) (*Selection, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, s.cacheKey(topic, candidates, max))
	if err != nil {
		return nil, false
	}
	var sel Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return nil, false
	}
	return &sel, true
}

func (s *Selector) store(ctx context.Context, topic string, candidates []entities.ContentSample, max int, sel *Selection) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(sel)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(topic, candidates, max), data, cacheTTL); err != nil {
		s.logger.Debugw("Selection cache write failed", "error", err)
	}
}
