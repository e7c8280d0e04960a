package usecase

import (
	"context"
	"sync"

	"trader-bot/internal/domain"
)

type chatCall struct {
	model       string
	temperature float64
	messages    []domain.ChatMessage
}

type fakeLLM struct {
	mu     sync.Mutex
	answer string
	err    error
	calls  []chatCall
}

func (f *fakeLLM) Chat(_ context.Context, model string, temperature float64, messages []domain.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, chatCall{model: model, temperature: temperature, messages: messages})
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeStatusError struct{ status int }

func (e fakeStatusError) Error() string       { return "upstream failed" }
func (e fakeStatusError) HTTPStatusCode() int { return e.status }

type recordingMetrics struct {
	mu          sync.Mutex
	replies     []string
	lookups     []string
	completions []string
}

func (m *recordingMetrics) RecordReply(tier, route string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, tier+"/"+route)
}

func (m *recordingMetrics) RecordLookup(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, outcome)
}

func (m *recordingMetrics) RecordCompletion(purpose, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions = append(m.completions, purpose+"/"+outcome)
}

type staticSource struct {
	records []domain.Record
	err     error
}

func (s staticSource) Records(context.Context) ([]domain.Record, error) {
	return s.records, s.err
}
