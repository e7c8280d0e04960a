package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"

	"trader-bot/internal/breaker"
	"trader-bot/internal/domain"
)

func newTestResponder(t *testing.T, llm LLMClient, cb *gobreaker.CircuitBreaker, m Metrics) *Responder {
	t.Helper()
	r, err := NewResponder(llm, ResponderConfig{Model: "gpt-test", Knowledge: "Somos TraderMexico."}, cb, m, nil)
	require.NoError(t, err)
	return r
}

func TestNewResponder_Validation(t *testing.T) {
	_, err := NewResponder(nil, ResponderConfig{Model: "m"}, nil, nil, nil)
	require.Error(t, err)

	_, err = NewResponder(&fakeLLM{}, ResponderConfig{Model: "  "}, nil, nil, nil)
	require.Error(t, err)
}

func TestResponder_BuildsPersonaAndKnowledgePrompt(t *testing.T) {
	llm := &fakeLLM{answer: "  Claro, te explico.  "}
	metrics := &recordingMetrics{}
	r := newTestResponder(t, llm, nil, metrics)

	got := r.Respond(context.Background(), "¿Qué es un stop loss?", "Eres un mentor.")

	require.Equal(t, "Claro, te explico.", got)
	require.Len(t, llm.calls, 1)
	call := llm.calls[0]
	require.Equal(t, "gpt-test", call.model)
	require.InDelta(t, 0.7, call.temperature, 1e-9)
	require.Len(t, call.messages, 2)
	require.Equal(t, "system", call.messages[0].Role)
	require.Equal(t, "Eres un mentor.\n\nContexto de TraderMexico:\nSomos TraderMexico.", call.messages[0].Content)
	require.Equal(t, "user", call.messages[1].Role)
	require.Equal(t, "¿Qué es un stop loss?", call.messages[1].Content)
	require.Equal(t, []string{"bot/ok"}, metrics.completions)
}

func TestResponder_ErrorYieldsApology(t *testing.T) {
	metrics := &recordingMetrics{}
	r := newTestResponder(t, &fakeLLM{err: errors.New("quota exceeded")}, nil, metrics)

	require.Equal(t, ApologyText, r.Respond(context.Background(), "hola", "persona"))
	require.Equal(t, []string{"bot/degraded"}, metrics.completions)
}

func TestResponder_EmptyAnswerYieldsApology(t *testing.T) {
	r := newTestResponder(t, &fakeLLM{answer: "   "}, nil, nil)
	require.Equal(t, ApologyText, r.Respond(context.Background(), "hola", "persona"))
}

func TestResponder_MissingKnowledgeUsesPlaceholder(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	r, err := NewResponder(llm, ResponderConfig{Model: "m"}, nil, nil, nil)
	require.NoError(t, err)

	r.Respond(context.Background(), "hola", "persona")
	require.True(t, strings.HasSuffix(llm.calls[0].messages[0].Content, KnowledgePlaceholder))
}

type blockingLLM struct{}

func (blockingLLM) Chat(ctx context.Context, _ string, _ float64, _ []domain.ChatMessage) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestResponder_TimeoutYieldsApology(t *testing.T) {
	r, err := NewResponder(blockingLLM{}, ResponderConfig{Model: "m", Timeout: 20 * time.Millisecond}, nil, nil, nil)
	require.NoError(t, err)

	require.Equal(t, ApologyText, r.Respond(context.Background(), "hola", "persona"))
}

func TestResponder_OpenBreakerSkipsCompletion(t *testing.T) {
	cfg := breaker.DefaultConfig("test")
	cfg.MinRequests = 1
	cfg.FailureThreshold = 0.5
	cb := breaker.New(cfg, nil)

	llm := &fakeLLM{err: errors.New("down")}
	r := newTestResponder(t, llm, cb, nil)

	require.Equal(t, ApologyText, r.Respond(context.Background(), "a", "p"))
	require.Equal(t, gobreaker.StateOpen, cb.State())
	require.Equal(t, ApologyText, r.Respond(context.Background(), "b", "p"))
	require.Equal(t, 1, llm.callCount())
}
