package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"trader-bot/internal/breaker"
	"trader-bot/internal/domain"
)

const (
	defaultCompletionTimeout = 20 * time.Second
	botTemperature           = 0.7
)

// ApologyText is returned whenever the completion service cannot answer.
const ApologyText = "Lo siento, en este momento no puedo responder tu mensaje. Por favor intenta de nuevo en unos minutos. 🙏"

var tracer = otel.Tracer("trader-bot/usecase")

type LLMClient interface {
	Chat(ctx context.Context, model string, temperature float64, messages []domain.ChatMessage) (string, error)
}

// ResponderConfig configures a Responder.
type ResponderConfig struct {
	Model     string
	Knowledge string
	Timeout   time.Duration
}

// Responder asks the completion service for a reply in a given persona and
// degrades to ApologyText on any failure.
type Responder struct {
	llm       LLMClient
	model     string
	knowledge string
	timeout   time.Duration
	cb        *gobreaker.CircuitBreaker
	metrics   Metrics
	logger    *zap.Logger
}

// NewResponder creates a Responder. cb, m and logger may be nil.
func NewResponder(llm LLMClient, cfg ResponderConfig, cb *gobreaker.CircuitBreaker, m Metrics, logger *zap.Logger) (*Responder, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("usecase: model must not be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCompletionTimeout
	}
	if strings.TrimSpace(cfg.Knowledge) == "" {
		cfg.Knowledge = KnowledgePlaceholder
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{
		llm:       llm,
		model:     cfg.Model,
		knowledge: cfg.Knowledge,
		timeout:   cfg.Timeout,
		cb:        cb,
		metrics:   metricsOrNop(m),
		logger:    logger,
	}, nil
}

// Respond never fails: callers always get text to send back.
func (r *Responder) Respond(ctx context.Context, message, persona string) string {
	ctx, span := tracer.Start(ctx, "responder.respond")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	messages := buildResponderMessages(persona, r.knowledge, message)
	answer, err := breaker.Call(r.cb, func() (string, error) {
		return r.llm.Chat(ctx, r.model, botTemperature, messages)
	})
	if err == nil && strings.TrimSpace(answer) == "" {
		err = errors.New("usecase: empty completion")
	}
	if err != nil {
		r.logger.Warn("completion failed, sending apology", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion degraded")
		span.SetAttributes(attribute.Bool("degraded", true))
		r.metrics.RecordCompletion("bot", "degraded")
		return ApologyText
	}

	r.metrics.RecordCompletion("bot", "ok")
	return strings.TrimSpace(answer)
}

func buildResponderMessages(persona, knowledge, message string) []domain.ChatMessage {
	system := strings.TrimSpace(persona) + "\n\nContexto de TraderMexico:\n" + strings.TrimSpace(knowledge)
	return domain.SystemPrompt(system, message)
}
