// Package generate assembles prompts from the style guide, selected creator
// insights and recent output, and turns model completions into stored posts.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/content"
	"github.com/branddesk/branddesk-backend/internal/db/entities"
	"github.com/branddesk/branddesk-backend/internal/db/interfaces"
	"github.com/branddesk/branddesk-backend/internal/gateway"
	"github.com/branddesk/branddesk-backend/internal/selector"
)

const recentPostLimit = 5

// Models names the fast and pro completion models the generator routes between.
type Models struct {
	Fast string
	Pro  string
}

type Generator struct {
	gw          gateway.ChatCompleter
	models      Models
	styleGuides interfaces.StyleGuideStore
	historical  interfaces.HistoricalPostStore
	posts       interfaces.GeneratedPostStore
	retriever   *content.Retriever
	selector    *selector.Selector
	logger      *zap.SugaredLogger
}

func New(gw gateway.ChatCompleter, models Models, styleGuides interfaces.StyleGuideStore,
	historical interfaces.HistoricalPostStore, posts interfaces.GeneratedPostStore,
	retriever *content.Retriever, sel *selector.Selector, logger *zap.SugaredLogger) *Generator {
	return &Generator{
		gw:          gw,
		models:      models,
		styleGuides: styleGuides,
		historical:  historical,
		posts:       posts,
		retriever:   retriever,
		selector:    sel,
		logger:      logger,
	}
}

type PostRequest struct {
	Platform     string `json:"platform"`
	Topic        string `json:"topic"`
	StyleGuide   string `json:"styleGuide,omitempty"`
	Category     string `json:"category,omitempty"`
	Format       string `json:"format,omitempty"`
	ContentType  string `json:"contentType,omitempty"`
	Description  string `json:"description,omitempty"`
	Notes        string `json:"notes,omitempty"`
	ImagePrompt  string `json:"imagePrompt,omitempty"`
	Script       string `json:"script,omitempty"`
	UseWebSearch bool   `json:"useWebSearch,omitempty"`
}

type ReplyRequest struct {
	Platform string `json:"platform"`
	Comment  string `json:"comment"`
	Context  string `json:"context,omitempty"`
	Tone     string `json:"tone,omitempty"`
}

type CommentRequest struct {
	Platform string `json:"platform"`
	Post     string `json:"post"`
	Angle    string `json:"angle,omitempty"`
	Style    string `json:"style,omitempty"`
}

// GeneratePost produces and persists a post for the topic. The returned
// selection records which creator samples grounded the draft.
func (g *Generator) GeneratePost(ctx context.Context, req PostRequest) (*entities.GeneratedPost, *selector.Selection, error) {
	if req.Topic == "" {
		return nil, nil, errors.New("topic is required")
	}
	platform := normalizePlatform(req.Platform)

	guide := g.activeStyleGuide(ctx)
	if req.StyleGuide != "" {
		guide = &entities.StyleGuide{Content: req.StyleGuide}
	}

	field := req.Category
	if field == "" {
		field = req.Topic
	}
	candidates := g.retriever.ForField(ctx, field)
	sel, err := g.selector.Select(ctx, req.Topic, candidates)
	if err != nil {
		return nil, nil, err
	}
	selected := selectedSamples(sel.IDs, candidates)

	historical, err := g.historical.List(ctx)
	if err != nil {
		g.logger.Warnw("Could not load historical posts for anti-duplication", "error", err)
		historical = nil
	}
	recent, err := g.posts.List(ctx)
	if err != nil {
		g.logger.Warnw("Could not load recent posts for anti-duplication", "error", err)
		recent = nil
	}

	user := g.postPrompt(req, platform, selected, historical, recent)
	raw, err := g.gw.Complete(ctx, gateway.ChatRequest{
		Model:  g.modelFor(req),
		System: personaPrompt(guide),
		User:   user,
	})
	if err != nil {
		return nil, nil, err
	}

	post := &entities.GeneratedPost{
		Content:  StripMarkdown(raw),
		Platform: platform,
		Topic:    optional(req.Topic),
		Category: optional(req.Category),
		Format:   optional(req.Format),
	}
	if err := g.posts.Create(ctx, post); err != nil {
		return nil, nil, fmt.Errorf("save generated post: %w", err)
	}
	return post, sel, nil
}

// GenerateReply drafts a reply to a comment someone left. Replies are
// returned directly and never persisted.
func (g *Generator) GenerateReply(ctx context.Context, req ReplyRequest) (string, error) {
	if req.Comment == "" {
		return "", errors.New("comment is required")
	}
	platform := normalizePlatform(req.Platform)
	guide := g.activeStyleGuide(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "Write a reply to this comment on %s:\n\n%s\n\n", platform, req.Comment)
	if req.Context != "" {
		fmt.Fprintf(&b, "Context around the comment:\n%s\n\n", req.Context)
	}
	b.WriteString(replyInstruction(req.Tone))
	b.WriteString("\n")
	b.WriteString(guidanceFor(platform))

	raw, err := g.gw.Complete(ctx, gateway.ChatRequest{
		Model:  g.models.Fast,
		System: personaPrompt(guide),
		User:   b.String(),
	})
	if err != nil {
		return "", err
	}
	return StripMarkdown(raw), nil
}

// GenerateComment drafts a short comment on someone else's post.
func (g *Generator) GenerateComment(ctx context.Context, req CommentRequest) (string, error) {
	if req.Post == "" {
		return "", errors.New("post is required")
	}
	platform := normalizePlatform(req.Platform)
	guide := g.activeStyleGuide(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "Here is a %s post:\n\n%s\n\n", platform, req.Post)
	if req.Angle != "" {
		fmt.Fprintf(&b, "Your personal angle: %s\n\n", req.Angle)
	}
	b.WriteString(commentInstruction(req.Style))
	b.WriteString("\n")
	b.WriteString(guidanceFor(platform))

	raw, err := g.gw.Complete(ctx, gateway.ChatRequest{
		Model:  g.models.Fast,
		System: personaPrompt(guide),
		User:   b.String(),
	})
	if err != nil {
		return "", err
	}
	return StripMarkdown(raw), nil
}

func (g *Generator) postPrompt(req PostRequest, platform string, selected []entities.ContentSample,
	historical []entities.HistoricalPost, recent []entities.GeneratedPost) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s post about: %s\n", platform, req.Topic)
	if req.Format != "" {
		fmt.Fprintf(&b, "Format: %s\n", req.Format)
	}
	if req.Description != "" {
		fmt.Fprintf(&b, "Details: %s\n", req.Description)
	}
	b.WriteString("\n")
	if needsWebGrounding(req) {
		b.WriteString(webGroundingInstruction)
		b.WriteString("\n")
	}
	b.WriteString(guidanceFor(platform))
	b.WriteString("\n")
	b.WriteString(contentTypeInstruction(req.ContentType))
	b.WriteString("\n")
	if req.ImagePrompt != "" {
		fmt.Fprintf(&b, "Planned visual: %s\n", req.ImagePrompt)
	}
	if req.Script != "" {
		fmt.Fprintf(&b, "Work from this production script:\n%s\n", req.Script)
	}
	b.WriteString(insightsBlock(selected))
	b.WriteString(antiDuplicationBlock(historical, recent, recentPostLimit))
	b.WriteString(notesBlock(req.Notes))
	return b.String()
}

// modelFor routes grounding-heavy requests to the pro model. A request needs
// web grounding when the caller asks for it, or when it is an AI-category
// request about current events.
func (g *Generator) modelFor(req PostRequest) string {
	if needsWebGrounding(req) {
		return g.models.Pro
	}
	return g.models.Fast
}

func needsWebGrounding(req PostRequest) bool {
	if req.UseWebSearch {
		return true
	}
	if !strings.EqualFold(req.Category, "ai") {
		return false
	}
	text := strings.ToLower(req.Topic + " " + req.Description)
	for _, kw := range []string{"news", "update", "weekend"} {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func (g *Generator) activeStyleGuide(ctx context.Context) *entities.StyleGuide {
	guide, err := g.styleGuides.Active(ctx)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			g.logger.Warnw("Could not load style guide", "error", err)
		}
		return nil
	}
	return guide
}

func selectedSamples(ids []string, candidates []entities.ContentSample) []entities.ContentSample {
	byID := make(map[string]entities.ContentSample, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	out := make([]entities.ContentSample, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func normalizePlatform(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return defaultPlatform
	}
	return p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
