package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"video-insights/internal/models"
	"video-insights/shared/config"
	"video-insights/shared/logging"

	"github.com/goccy/go-json"
	"google.golang.org/genai"
)

// Generator produces a text completion for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

// Briefer turns high-potential videos into short script briefs, caching one brief per video
type Briefer struct {
	gen   Generator
	mu    sync.Mutex
	cache map[string]models.ScriptBrief
	log   *logging.Logger
}

func NewBriefer(ctx context.Context, cfg *config.AIConfig) (*Briefer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return NewBrieferWithGenerator(&geminiGenerator{client: client, model: cfg.Model}), nil
}

func NewBrieferWithGenerator(gen Generator) *Briefer {
	return &Briefer{
		gen:   gen,
		cache: make(map[string]models.ScriptBrief),
		log:   logging.Component("briefer"),
	}
}

// Brief returns the script brief for video, generating it on first request
func (b *Briefer) Brief(ctx context.Context, video models.VideoRecord) (models.ScriptBrief, error) {
	b.mu.Lock()
	cached, ok := b.cache[video.VideoID]
	b.mu.Unlock()
	if ok {
		return cached, nil
	}

	response, err := b.gen.Generate(ctx, buildBriefPrompt(video))
	if err != nil {
		return models.ScriptBrief{}, fmt.Errorf("failed to generate brief for video %s: %w", video.VideoID, err)
	}
	if response == "" {
		return models.ScriptBrief{}, fmt.Errorf("empty brief response for video %s", video.VideoID)
	}

	brief, err := b.parseBriefResponse(response, video)
	if err != nil {
		return models.ScriptBrief{}, fmt.Errorf("failed to parse brief for video %s: %w", video.VideoID, err)
	}

	b.mu.Lock()
	b.cache[video.VideoID] = brief
	b.mu.Unlock()
	return brief, nil
}

// BriefAll generates briefs for up to limit videos. Failures are logged and skipped.
func (b *Briefer) BriefAll(ctx context.Context, videos []models.VideoRecord, limit int) map[string]models.ScriptBrief {
	briefs := make(map[string]models.ScriptBrief)
	for _, v := range videos {
		if len(briefs) >= limit {
			break
		}
		if ctx.Err() != nil {
			break
		}
		brief, err := b.Brief(ctx, v)
		if err != nil {
			b.log.Warn().Err(err).Str("video_id", v.VideoID).Msg("skipping script brief")
			continue
		}
		briefs[v.VideoID] = brief
	}
	return briefs
}

func buildBriefPrompt(video models.VideoRecord) string {
	published := "unknown"
	if video.PublishedValid {
		published = video.PublishedAt.Format("2006-01-02")
	}

	return fmt.Sprintf(`You are a scriptwriter for a YouTube channel. The video below is performing far above average and we want to make our own take on its topic.

VIDEO METADATA:
Title: %s
Duration: %s
Views: %d
Views per day: %d
Likes: %d
Comments: %d
Published: %s

Write a short script brief in the following JSON format:
{
  "hook": "One sentence for the first 5 seconds of our video",
  "angle": "What our version does differently from this one",
  "outline": ["3 to 6 short section titles, in order"]
}`,
		video.Title,
		video.Duration,
		video.Views,
		video.RoundedViewsPerDay,
		video.Likes,
		video.Comments,
		published,
	)
}

func (b *Briefer) parseBriefResponse(response string, video models.VideoRecord) (models.ScriptBrief, error) {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return models.ScriptBrief{}, fmt.Errorf("no JSON found in response: %s", response)
	}

	jsonStr := response[startIdx : endIdx+1]

	var result struct {
		Hook    string   `json:"hook"`
		Angle   string   `json:"angle"`
		Outline []string `json:"outline"`
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		sanitized := sanitizeJSON(jsonStr)
		if sanitizedErr := json.Unmarshal([]byte(sanitized), &result); sanitizedErr != nil {
			return models.ScriptBrief{}, fmt.Errorf("failed to unmarshal JSON '%s': %w (sanitized version also failed: %v)", jsonStr, err, sanitizedErr)
		}
		b.log.Warn().Str("video_id", video.VideoID).Msg("had to sanitize malformed brief JSON")
	}

	if strings.TrimSpace(result.Hook) == "" {
		return models.ScriptBrief{}, fmt.Errorf("brief hook is required but was empty")
	}

	return models.ScriptBrief{
		VideoID: video.VideoID,
		Hook:    strings.TrimSpace(result.Hook),
		Angle:   strings.TrimSpace(result.Angle),
		Outline: result.Outline,
	}, nil
}

// sanitizeJSON escapes stray quotes inside "key": "value" lines, a common model formatting slip
func sanitizeJSON(jsonStr string) string {
	lines := strings.Split(jsonStr, "\n")
	sanitizedLines := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx != -1 && strings.HasPrefix(line, "\"") {
			beforeColon := line[:colonIdx+1]
			afterColon := strings.TrimSpace(line[colonIdx+1:])

			if strings.HasPrefix(afterColon, "\"") {
				lastQuoteIdx := strings.LastIndex(afterColon, "\"")
				if lastQuoteIdx > 0 {
					content := afterColon[1:lastQuoteIdx]
					content = strings.ReplaceAll(content, `\"`, `"`)
					content = strings.ReplaceAll(content, `"`, `\"`)
					line = beforeColon + " \"" + content + "\"" + afterColon[lastQuoteIdx+1:]
				}
			}
		}

		sanitizedLines = append(sanitizedLines, line)
	}

	return strings.Join(sanitizedLines, "\n")
}
