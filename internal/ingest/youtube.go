package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
)

var (
	// ErrNoVideoID means the input did not contain a recognizable video id.
	ErrNoVideoID = errors.New("ingest: no video id in url")
	// ErrNoCaptions means the video has no caption tracks to transcribe from.
	ErrNoCaptions = errors.New("ingest: video has no captions")
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/embed/|/shorts/|youtu\.be/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`^([A-Za-z0-9_-]{11})$`),
}

// ExtractVideoID pulls the 11-character video id out of any common YouTube
// URL shape, or accepts a bare id.
func ExtractVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(input); m != nil {
			return m[1], nil
		}
	}
	return "", ErrNoVideoID
}

// Transcript is the text content of a video plus its page title.
type Transcript struct {
	VideoID string
	Title   string
	Text    string
}

// TranscriptFetcher scrapes caption tracks from the public watch page.
type TranscriptFetcher struct {
	client *http.Client
}

func NewTranscriptFetcher(client *http.Client) *TranscriptFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &TranscriptFetcher{client: client}
}

func (f *TranscriptFetcher) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	page, err := f.get(ctx, "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}

	track, err := pickCaptionTrack(page)
	if err != nil {
		return nil, err
	}

	captions, err := f.get(ctx, track)
	if err != nil {
		return nil, fmt.Errorf("fetch captions: %w", err)
	}

	return &Transcript{
		VideoID: videoID,
		Title:   extractTitle(page),
		Text:    extractCaptionText(captions),
	}, nil
}

func (f *TranscriptFetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept-Language", "en-US,en")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

var captionTracksRe = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

// pickCaptionTrack finds the caption track list embedded in the watch page
// and prefers an English track when one exists.
func pickCaptionTrack(page string) (string, error) {
	m := captionTracksRe.FindStringSubmatch(page)
	if m == nil {
		return "", ErrNoCaptions
	}

	var tracks []captionTrack
	if err := json.Unmarshal([]byte(m[1]), &tracks); err != nil {
		return "", fmt.Errorf("parse caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return "", ErrNoCaptions
	}

	for _, prefix := range []string{"en", "cs"} {
		for _, t := range tracks {
			if strings.HasPrefix(t.LanguageCode, prefix) {
				return unescapeURL(t.BaseURL), nil
			}
		}
	}
	return unescapeURL(tracks[0].BaseURL), nil
}

// unescapeURL decodes entity-escaped caption URLs; the watch page embeds
// them with &amp; between query parameters.
func unescapeURL(u string) string {
	return html.UnescapeString(u)
}

var titleRe = regexp.MustCompile(`<title>(.*?)</title>`)

func extractTitle(page string) string {
	m := titleRe.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	title := html.UnescapeString(m[1])
	return strings.TrimSuffix(title, " - YouTube")
}

var captionTextRe = regexp.MustCompile(`(?s)<text[^>]*>(.*?)</text>`)

// extractCaptionText flattens the timed-text XML into one space-joined string.
func extractCaptionText(xml string) string {
	matches := captionTextRe.FindAllStringSubmatch(xml, -1)
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		text := html.UnescapeString(m[1])
		text = strings.TrimSpace(text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
