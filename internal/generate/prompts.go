package generate

import (
	"fmt"
	"strings"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

// platformGuidance keys are lowercase platform names. Unknown platforms fall
// back to the linkedin guidance, the house default.
var platformGuidance = map[string]string{
	"linkedin":  "Write for LinkedIn: a strong hook in the first line, short paragraphs with white space, a professional but personal voice, and end with a question or call for discussion. No hashtag walls; two or three relevant hashtags at most.",
	"x":         "Write for X: punchy and compressed, every word earns its place. Lead with the sharpest claim. Threads are allowed only when asked for; otherwise stay under 280 characters.",
	"twitter":   "Write for X: punchy and compressed, every word earns its place. Lead with the sharpest claim. Threads are allowed only when asked for; otherwise stay under 280 characters.",
	"instagram": "Write for Instagram: a caption that works with a visual, conversational and emotive, line breaks for rhythm, and a handful of targeted hashtags at the end.",
	"youtube":   "Write for a YouTube community post or description: direct address to viewers, clear value statement up front, and an explicit prompt to comment or subscribe.",
}

const defaultPlatform = "linkedin"

func guidanceFor(platform string) string {
	if g, ok := platformGuidance[strings.ToLower(platform)]; ok {
		return g
	}
	return platformGuidance[defaultPlatform]
}

// replyTones maps the requested tone of a reply to writing instructions.
var replyTones = map[string]string{
	"friendly":     "Keep it warm and approachable, like replying to someone you genuinely like.",
	"professional": "Keep it polished and measured, the voice of someone who knows the field.",
	"thoughtful":   "Slow down and engage with the substance; add a non-obvious observation.",
	"witty":        "Be quick and a little playful, but land a real point underneath the humor.",
	"direct":       "Get straight to the point, no hedging and no filler.",
}

const defaultReplyTone = "thoughtful"

func replyInstruction(tone string) string {
	if t, ok := replyTones[strings.ToLower(tone)]; ok {
		return t
	}
	return replyTones[defaultReplyTone]
}

// commentStyles maps the requested style of a comment to writing instructions.
var commentStyles = map[string]string{
	"add-value":         "Add one concrete, useful point the post did not cover.",
	"share-experience":  "Share a short first-hand experience that relates to the post.",
	"ask-question":      "Ask one thoughtful question that moves the conversation forward.",
	"offer-perspective": "Offer your own perspective on the claim in one or two sentences.",
	"support-amplify":   "Back the author up and amplify the strongest part of their point.",
}

const defaultCommentStyle = "add-value"

func commentInstruction(style string) string {
	if s, ok := commentStyles[strings.ToLower(style)]; ok {
		return s
	}
	return commentStyles[defaultCommentStyle]
}

const webGroundingInstruction = "IMPORTANT: This post must reflect current events. Search the web for the latest developments from the past 7 days and build the post around what happened this week, not older material.\n"

// contentTypeInstructions keys the extra direction appended for non-plain-text
// post formats.
var contentTypeInstructions = map[string]string{
	"text":     "Deliver the post as ready-to-publish text.",
	"image":    "Write the post caption. Then, on a separate final line, describe the single image that should accompany it.",
	"carousel": "Structure the post as numbered slides, one line per slide, with a hook slide first and a takeaway slide last.",
	"video":    "Write a short spoken-word script with a hook in the first five seconds and a clear call to action at the end.",
}

func contentTypeInstruction(contentType string) string {
	if s, ok := contentTypeInstructions[strings.ToLower(contentType)]; ok {
		return s
	}
	return contentTypeInstructions["text"]
}

func personaPrompt(styleGuide *entities.StyleGuide) string {
	var b strings.Builder
	b.WriteString("You are a ghostwriter producing social content in the author's voice. Write in plain text with no markdown formatting of any kind.\n")
	if styleGuide != nil && styleGuide.Content != "" {
		b.WriteString("\nFollow this style guide exactly:\n")
		b.WriteString(styleGuide.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func insightsBlock(samples []entities.ContentSample) string {
	if len(samples) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nGround the content in these insights from creators we follow:\n")
	for _, s := range samples {
		if s.KeyInsights != nil && *s.KeyInsights != "" {
			fmt.Fprintf(&b, "- %s (%s): %s\n", s.CreatorName, s.Platform, *s.KeyInsights)
		}
	}
	return b.String()
}

func antiDuplicationBlock(historical []entities.HistoricalPost, recent []entities.GeneratedPost, limit int) string {
	if len(historical) == 0 && len(recent) == 0 {
		return ""
	}
	if len(historical) > limit {
		historical = historical[:limit]
	}
	if len(recent) > limit {
		recent = recent[:limit]
	}
	var b strings.Builder
	b.WriteString("\nDo not repeat angles or phrasing from these earlier posts:\n")
	for _, p := range historical {
		fmt.Fprintf(&b, "- %s\n", snippet(p.Content, 160))
	}
	for _, p := range recent {
		fmt.Fprintf(&b, "- %s\n", snippet(p.Content, 160))
	}
	return b.String()
}

func notesBlock(notes string) string {
	if notes == "" {
		return ""
	}
	return "\nAdditional direction from the author:\n" + notes + "\n"
}

func snippet(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
