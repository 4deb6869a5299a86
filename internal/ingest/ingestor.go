// Package ingest turns YouTube videos into creator content samples: it
// scrapes the transcript, summarizes it through the gateway, and files the
// result under the named creator.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
	"github.com/branddesk/branddesk-backend/internal/db/interfaces"
	"github.com/branddesk/branddesk-backend/internal/gateway"
)

// maxTranscriptChars bounds what we send to the model; transcripts beyond
// this are truncated from the end.
const maxTranscriptChars = 120000

type Ingestor struct {
	fetcher   *TranscriptFetcher
	gw        gateway.ChatCompleter
	fastModel string
	proModel  string
	creators  interfaces.CreatorStore
	content   interfaces.ContentStore
	logger    *zap.SugaredLogger
}

func NewIngestor(fetcher *TranscriptFetcher, gw gateway.ChatCompleter, fastModel, proModel string,
	creators interfaces.CreatorStore, contentStore interfaces.ContentStore, logger *zap.SugaredLogger) *Ingestor {
	return &Ingestor{
		fetcher:   fetcher,
		gw:        gw,
		fastModel: fastModel,
		proModel:  proModel,
		creators:  creators,
		content:   contentStore,
		logger:    logger,
	}
}

// Run processes one video for the named creator and returns the id of the
// stored content sample.
func (in *Ingestor) Run(ctx context.Context, videoURL, creatorName string) (string, error) {
	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return "", err
	}

	transcript, err := in.fetcher.Fetch(ctx, videoID)
	if err != nil {
		return "", err
	}
	if transcript.Text == "" {
		return "", ErrNoCaptions
	}

	summary, err := in.summarize(ctx, transcript)
	if err != nil {
		return "", err
	}

	creator, err := in.resolveCreator(ctx, creatorName)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	sourceURL := "https://www.youtube.com/watch?v=" + videoID
	sample := &entities.ContentSample{
		CreatorID:   creator.ID,
		Content:     transcript.Text,
		Platform:    "youtube",
		SourceURL:   &sourceURL,
		PostedAt:    &now,
		KeyInsights: &summary,
	}
	if err := in.content.Create(ctx, sample); err != nil {
		return "", fmt.Errorf("save content sample: %w", err)
	}

	in.logger.Infow("Ingested video", "video_id", videoID, "creator", creator.Name, "content_id", sample.ID)
	return sample.ID, nil
}

const summarizeSystem = `You summarize video transcripts for a content team. Produce 3 to 5 key insights as short plain-text sentences, focused on what is actionable or novel. No markdown.`

// summarize asks the fast model first and escalates to the pro model when the
// request is rejected for size or a transient server error.
func (in *Ingestor) summarize(ctx context.Context, t *Transcript) (string, error) {
	text := t.Text
	if len(text) > maxTranscriptChars {
		text = text[:maxTranscriptChars]
	}
	user := fmt.Sprintf("Video title: %s\n\nTranscript:\n%s", t.Title, text)

	summary, err := in.gw.Complete(ctx, gateway.ChatRequest{
		Model:  in.fastModel,
		System: summarizeSystem,
		User:   user,
	})
	if err == nil {
		return summary, nil
	}
	if !shouldEscalate(err) {
		return "", err
	}

	in.logger.Warnw("Fast model rejected transcript, retrying with pro model",
		"video_id", t.VideoID, "error", err)
	return in.gw.Complete(ctx, gateway.ChatRequest{
		Model:  in.proModel,
		System: summarizeSystem,
		User:   user,
	})
}

func shouldEscalate(err error) bool {
	switch gateway.HTTPStatus(err) {
	case 400, 413, 500:
		return true
	}
	return false
}

// resolveCreator finds a creator whose name contains the given string, or
// creates a minimal unanalyzed one when nobody matches.
func (in *Ingestor) resolveCreator(ctx context.Context, name string) (*entities.Creator, error) {
	if name == "" {
		return nil, errors.New("creator name is required")
	}

	matches, err := in.creators.FindByNameLike(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find creator: %w", err)
	}
	if len(matches) > 0 {
		return &matches[0], nil
	}

	creator := &entities.Creator{
		Name:     name,
		YouTube:  true,
		Priority: entities.PriorityMedium,
	}
	if err := in.creators.Create(ctx, creator); err != nil {
		return nil, fmt.Errorf("create creator: %w", err)
	}
	in.logger.Infow("Created creator from ingestion", "name", name, "id", creator.ID)
	return creator, nil
}
