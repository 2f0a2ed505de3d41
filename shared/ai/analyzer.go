package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"creator-dashboard/internal/models"
	"creator-dashboard/shared/config"

	"google.golang.org/genai"
)

const (
	// maxPromptComments bounds the comment sample sent for analysis.
	maxPromptComments = 30
	commentSeparator  = "\n---\n"
	expectedKeywords  = 6
)

var (
	// ErrMalformedResponse signals that a structured completion did not decode.
	ErrMalformedResponse = errors.New("malformed analysis response")
	// ErrGeneration wraps any failed call to the model.
	ErrGeneration = errors.New("generation failed")
)

// ContentGenerator is the subset of the Gemini models API the analyzer uses.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Analyzer struct {
	models ContentGenerator
	model  string
}

func NewAnalyzer(ctx context.Context, cfg *config.AIConfig) (*Analyzer, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return NewAnalyzerWithGenerator(client.Models, cfg.Model), nil
}

// NewAnalyzerWithGenerator builds an Analyzer over any ContentGenerator.
func NewAnalyzerWithGenerator(gen ContentGenerator, model string) *Analyzer {
	return &Analyzer{models: gen, model: model}
}

// AnalyzeComments asks the model for a structured reading of the comments:
// a summary, a sentiment label, six topic keywords and one recommendation.
// Only the first 30 comments are sent.
func (a *Analyzer) AnalyzeComments(ctx context.Context, videoTitle string, comments []string) (*models.Analysis, error) {
	prompt := buildInsightPrompt(videoTitle, comments)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := a.models.GenerateContent(ctx, a.model, contents, insightConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: analyze comments for %q: %w", ErrGeneration, videoTitle, err)
	}

	analysis, err := parseInsightResponse(result.Text())
	if err != nil {
		return nil, err
	}

	if n := len(analysis.Keywords); n != expectedKeywords {
		log.Printf("Warning: model returned %d keywords for %q, expected %d", n, videoTitle, expectedKeywords)
	}

	return analysis, nil
}

func buildInsightPrompt(videoTitle string, comments []string) string {
	if len(comments) > maxPromptComments {
		comments = comments[:maxPromptComments]
	}

	return fmt.Sprintf(`Analyze these YouTube comments for the video: "%s".

Comments:
%s

1. Summarize people's reactions.
2. Identify frequent keywords.
3. Extract exactly 6 key topics/keywords for future video creation.
4. Recommend a theme for the next video.`,
		videoTitle,
		strings.Join(comments, commentSeparator),
	)
}

func insightConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary":   {Type: genai.TypeString},
				"sentiment": {Type: genai.TypeString},
				"keywords": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "Exactly 6 recommended keywords for future topics",
				},
				"topicRecommendation": {Type: genai.TypeString},
			},
			Required: []string{"summary", "sentiment", "keywords", "topicRecommendation"},
		},
	}
}

func parseInsightResponse(text string) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &analysis, nil
}
