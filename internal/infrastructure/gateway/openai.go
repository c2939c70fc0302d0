package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	domain "chefgpt-server/internal/domain/conversation"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIGateway calls any OpenAI-compatible /chat/completions endpoint.
type OpenAIGateway struct {
	client   *resty.Client
	baseURL  string
	settings Settings
}

func NewOpenAIGateway(settings Settings, log zerolog.Logger) (*OpenAIGateway, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(settings.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIGateway{
		client:   newRestyClient("openai-gateway", log),
		baseURL:  baseURL,
		settings: settings,
	}, nil
}

func (g *OpenAIGateway) Generate(ctx context.Context, turns []domain.Turn, systemInstruction string) (string, error) {
	var body openai.ChatCompletionResponse
	req := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(g.request(turns, systemInstruction)).
		SetResult(&body)
	if g.settings.APIKey != "" {
		req.SetHeader("Authorization", "Bearer "+g.settings.APIKey)
	}

	resp, err := req.Post(g.baseURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("openai request failed with status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if len(body.Choices) == 0 {
		return "", nil
	}
	return body.Choices[0].Message.Content, nil
}

func (g *OpenAIGateway) request(turns []domain.Turn, systemInstruction string) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	if systemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemInstruction})
	}
	for _, turn := range turns {
		role := openai.ChatMessageRoleUser
		if turn.Speaker == domain.SpeakerAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	return openai.ChatCompletionRequest{
		Model:       g.settings.Model,
		Messages:    messages,
		Temperature: g.settings.Temperature,
		MaxTokens:   int(g.settings.MaxOutputTokens),
	}
}

type requestStartedAt struct{}

// newRestyClient logs each upstream call at debug level without bodies.
func newRestyClient(name string, log zerolog.Logger) *resty.Client {
	client := resty.New()
	client.AddRequestMiddleware(func(_ *resty.Client, r *resty.Request) error {
		r.SetContext(context.WithValue(r.Context(), requestStartedAt{}, time.Now()))
		return nil
	})
	client.AddResponseMiddleware(func(_ *resty.Client, r *resty.Response) error {
		started, _ := r.Request.Context().Value(requestStartedAt{}).(time.Time)
		log.Debug().
			Str("client", name).
			Int("status", r.StatusCode()).
			Str("method", r.Request.Method).
			Str("url", r.Request.URL).
			Dur("latency", time.Since(started)).
			Msg("HTTP client request")
		return nil
	})
	return client
}
