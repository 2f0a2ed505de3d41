package ai

import (
	"context"
	"fmt"

	"creator-dashboard/internal/models"

	"google.golang.org/genai"
)

const (
	outlinePersona = "You are a professional YouTube script writer and content strategist."
	chatPersona    = "You are an AI assistant helping a user understand YouTube content. Use the provided video context to answer questions."
)

// GenerateOutline returns a free-text script outline for one keyword.
func (a *Analyzer) GenerateOutline(ctx context.Context, keyword string) (string, error) {
	prompt := fmt.Sprintf(`Create a brief video script outline (TOC) for a new YouTube video focused on the keyword: "%s". Keep it concise and professional.`, keyword)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := a.models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(outlinePersona),
	})
	if err != nil {
		return "", fmt.Errorf("%w: outline for %q: %w", ErrGeneration, keyword, err)
	}

	return result.Text(), nil
}

// Chat continues a strategy conversation. History is replayed in order
// before the new message.
func (a *Analyzer) Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Role == models.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	result, err := a.models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(chatPersona),
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat: %w", ErrGeneration, err)
	}

	return result.Text(), nil
}

func systemInstruction(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(text)}}
}
