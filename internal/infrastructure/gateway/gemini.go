package gateway

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	domain "chefgpt-server/internal/domain/conversation"
)

// GeminiGateway calls the Gemini generateContent API.
type GeminiGateway struct {
	client   *genai.Client
	settings Settings
}

func NewGeminiGateway(ctx context.Context, settings Settings) (*GeminiGateway, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      settings.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: settings.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGateway{client: client, settings: settings}, nil
}

func (g *GeminiGateway) Generate(ctx context.Context, turns []domain.Turn, systemInstruction string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.settings.Model, geminiContents(turns), g.generationConfig(systemInstruction))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}

func (g *GeminiGateway) generationConfig(systemInstruction string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.settings.Temperature),
		MaxOutputTokens: g.settings.MaxOutputTokens,
	}
	if systemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	if g.settings.ThinkingBudget > 0 || g.settings.IncludeThoughts {
		thinking := &genai.ThinkingConfig{IncludeThoughts: g.settings.IncludeThoughts}
		if g.settings.ThinkingBudget > 0 {
			thinking.ThinkingBudget = genai.Ptr(g.settings.ThinkingBudget)
		}
		cfg.ThinkingConfig = thinking
	}
	return cfg
}

// geminiContents maps the transcript onto Gemini's user/model roles.
func geminiContents(turns []domain.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		role := genai.Role(genai.RoleUser)
		if turn.Speaker == domain.SpeakerAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return contents
}
