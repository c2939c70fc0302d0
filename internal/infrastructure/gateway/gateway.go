package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	domain "chefgpt-server/internal/domain/conversation"
	"chefgpt-server/internal/infrastructure/metrics"
	"chefgpt-server/internal/infrastructure/observability"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	tracerName = "chat-api/gateway"
)

// Settings configures a model backend. The generation fields come from the
// assistant profile and are fixed for the lifetime of the process.
type Settings struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	// ThinkingBudget is only sent when positive.
	ThinkingBudget  int32
	IncludeThoughts bool
}

// New builds the gateway for settings.Provider wrapped with metrics and tracing.
func New(ctx context.Context, settings Settings, log zerolog.Logger) (domain.Gateway, error) {
	if strings.TrimSpace(settings.Model) == "" {
		return nil, fmt.Errorf("gateway model is required")
	}

	var (
		next domain.Gateway
		err  error
	)
	switch strings.ToLower(settings.Provider) {
	case ProviderGemini, "":
		next, err = NewGeminiGateway(ctx, settings)
	case ProviderOpenAI:
		next, err = NewOpenAIGateway(settings, log)
	default:
		return nil, fmt.Errorf("unsupported gateway provider %q", settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(next, strings.ToLower(settings.Provider), log), nil
}

// Instrument records latency, outcome and a span around every call.
func Instrument(next domain.Gateway, provider string, log zerolog.Logger) domain.Gateway {
	if provider == "" {
		provider = ProviderGemini
	}
	duration, err := observability.Meter(tracerName).Float64Histogram("chat.gateway.duration",
		metric.WithDescription("Model gateway call latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("create gateway duration instrument")
	}
	return &instrumented{
		next:     next,
		provider: provider,
		duration: duration,
		log:      log.With().Str("component", "model-gateway").Str("provider", provider).Logger(),
	}
}

type instrumented struct {
	next     domain.Gateway
	provider string
	duration metric.Float64Histogram
	log      zerolog.Logger
}

func (g *instrumented) observe(ctx context.Context, outcome string, elapsed time.Duration) {
	metrics.RecordGatewayCall(g.provider, outcome, elapsed.Seconds())
	if g.duration != nil {
		g.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
			attribute.String("provider", g.provider),
			attribute.String("outcome", outcome),
		))
	}
}

func (g *instrumented) Generate(ctx context.Context, turns []domain.Turn, systemInstruction string) (string, error) {
	ctx, span := observability.StartSpan(ctx, tracerName, "gateway.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("gateway.provider", g.provider),
		attribute.Int("gateway.turns", len(turns)),
	)

	start := time.Now()
	reply, err := g.next.Generate(ctx, turns, systemInstruction)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		g.observe(ctx, "error", elapsed)
		g.log.Warn().Err(err).Int("turns", len(turns)).Dur("latency", elapsed).Msg("model call failed")
		return "", err
	}

	span.SetAttributes(attribute.Int("gateway.reply_chars", len(reply)))
	g.observe(ctx, "success", elapsed)
	g.log.Debug().Int("turns", len(turns)).Dur("latency", elapsed).Msg("model call completed")
	return reply, nil
}
