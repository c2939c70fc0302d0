package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "chefgpt-server/internal/domain/conversation"
)

func transcript() []domain.Turn {
	now := time.Now()
	return []domain.Turn{
		{Speaker: domain.SpeakerCaller, Text: "كبسة دجاج", CreatedAt: now},
		{Speaker: domain.SpeakerAssistant, Text: "المقادير...", CreatedAt: now},
		{Speaker: domain.SpeakerCaller, Text: "بدون بهارات حارة", CreatedAt: now},
	}
}

func TestOpenAIGatewaySendsTranscript(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "جرب الكمون"}}},
		})
	}))
	defer server.Close()

	gw, err := NewOpenAIGateway(Settings{BaseURL: server.URL + "/v1/", APIKey: "sk-test", Model: "gpt-test", Temperature: 0.7}, zerolog.Nop())
	require.NoError(t, err)

	reply, err := gw.Generate(context.Background(), transcript(), "You are a chef.")
	require.NoError(t, err)
	assert.Equal(t, "جرب الكمون", reply)

	assert.Equal(t, "gpt-test", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 0.001)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "You are a chef.", got.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, got.Messages[2].Role)
	assert.Equal(t, "بدون بهارات حارة", got.Messages[3].Content)
}

func TestOpenAIGatewayUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer server.Close()

	gw, err := NewOpenAIGateway(Settings{BaseURL: server.URL, Model: "gpt-test"}, zerolog.Nop())
	require.NoError(t, err)

	_, err = gw.Generate(context.Background(), transcript(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIGatewayEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	gw, err := NewOpenAIGateway(Settings{BaseURL: server.URL, Model: "gpt-test"}, zerolog.Nop())
	require.NoError(t, err)

	reply, err := gw.Generate(context.Background(), transcript(), "")
	require.NoError(t, err)
	assert.Equal(t, "", reply)
}

func TestGeminiGatewayGenerate(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"أهلاً يا شيف"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	gw, err := NewGeminiGateway(context.Background(), Settings{APIKey: "test-key", BaseURL: server.URL, Model: "gemini-test", Temperature: 0.7})
	require.NoError(t, err)

	reply, err := gw.Generate(context.Background(), transcript(), "You are a chef.")
	require.NoError(t, err)
	assert.Equal(t, "أهلاً يا شيف", reply)

	contents, ok := body["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].(map[string]any)["role"])
	assert.Equal(t, "model", contents[1].(map[string]any)["role"])
	assert.Contains(t, body, "systemInstruction")
}

func TestGeminiGatewayRequiresKey(t *testing.T) {
	_, err := NewGeminiGateway(context.Background(), Settings{Model: "gemini-test"})
	assert.Error(t, err)
}

func TestGeminiContentsRoles(t *testing.T) {
	contents := geminiContents(transcript())
	require.Len(t, contents, 3)
	assert.Equal(t, "user", string(contents[0].Role))
	assert.Equal(t, "model", string(contents[1].Role))
	assert.Equal(t, "كبسة دجاج", contents[0].Parts[0].Text)
}

type stubGateway struct {
	reply string
	err   error
}

func (s stubGateway) Generate(context.Context, []domain.Turn, string) (string, error) {
	return s.reply, s.err
}

func TestInstrumentPassesThrough(t *testing.T) {
	ok := Instrument(stubGateway{reply: "hi"}, ProviderOpenAI, zerolog.Nop())
	reply, err := ok.Generate(context.Background(), transcript(), "")
	require.NoError(t, err)
	assert.Equal(t, "hi", reply)

	boom := errors.New("boom")
	failing := Instrument(stubGateway{err: boom}, "", zerolog.Nop())
	_, err = failing.Generate(context.Background(), transcript(), "")
	assert.ErrorIs(t, err, boom)
}

func TestNewValidatesSettings(t *testing.T) {
	_, err := New(context.Background(), Settings{Provider: ProviderOpenAI}, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(context.Background(), Settings{Provider: "bedrock", Model: "m"}, zerolog.Nop())
	assert.Error(t, err)

	gw, err := New(context.Background(), Settings{Provider: ProviderOpenAI, Model: "m", BaseURL: "http://localhost:1"}, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, gw)
}
