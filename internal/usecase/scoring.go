package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"trader-bot/internal/breaker"
	"trader-bot/internal/domain"
)

const (
	scoringTemperature  = 0.8
	scoringSystemPrompt = "Eres un asesor financiero profesional y cálido."
)

// Trader levels by questionnaire score.
const (
	LevelBasic        = "BÁSICO"
	LevelIntermediate = "INTERMEDIO"
	LevelAdvanced     = "AVANZADO"
)

// Ikarus aptitude labels.
const (
	AptitudeNotFit     = "NO APTO"
	AptitudeDeveloping = "EN DESARROLLO"
	AptitudeFit        = "APTO"
)

// ClassifyTrader buckets a trading questionnaire score.
func ClassifyTrader(score int) string {
	switch {
	case score <= 8:
		return LevelBasic
	case score <= 12:
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

// ClassifyAptitude buckets an Ikarus aptitude score.
func ClassifyAptitude(score int) string {
	switch {
	case score <= 6:
		return AptitudeNotFit
	case score <= 10:
		return AptitudeDeveloping
	default:
		return AptitudeFit
	}
}

type ProfileInput struct {
	Name        string
	ProfileCode string
	ProfileName string
	Level       string
	// Capitals are pasted into the prompt as given, so any text is accepted.
	CapitalTotal  string
	CapitalTrader string
	CapitalFree   string
}

// DefaultProfileInput holds the values used for fields a caller omits.
func DefaultProfileInput() ProfileInput {
	return ProfileInput{
		Name:          "Trader novel",
		ProfileCode:   "buho",
		ProfileName:   "BÚHO ANALÍTICO",
		Level:         "N0",
		CapitalTotal:  "350",
		CapitalTrader: "300",
		CapitalFree:   "50",
	}
}

type TraderInput struct {
	Score int
	// Answers is echoed back unchanged; it may be any JSON value.
	Answers  any
	Operator string
}

// DefaultOperator is reported when the caller does not assign one.
const DefaultOperator = "Operador no definido"

type TraderResult struct {
	Profile     string
	Level       string
	Description string
	Score       int
	Answers     any
}

type AptitudeInput struct {
	Name    string
	Score   int
	Answers any
}

type AptitudeResult struct {
	Aptitude string
	Fit      bool
	Message  string
	Score    int
	Answers  any
}

// ScoringService renders questionnaire results through the completion
// service. Unlike the bot, failures are returned to the caller.
type ScoringService struct {
	llm     LLMClient
	model   string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
	metrics Metrics
	logger  *zap.Logger
}

func NewScoringService(llm LLMClient, model string, timeout time.Duration, cb *gobreaker.CircuitBreaker, m Metrics, logger *zap.Logger) (*ScoringService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("usecase: model must not be empty")
	}
	if timeout <= 0 {
		timeout = defaultCompletionTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoringService{
		llm:     llm,
		model:   model,
		timeout: timeout,
		cb:      cb,
		metrics: metricsOrNop(m),
		logger:  logger,
	}, nil
}

// InterpretProfile writes the HTML "financial horoscope" for a profile.
func (s *ScoringService) InterpretProfile(ctx context.Context, in ProfileInput) (string, error) {
	prompt := strings.Join([]string{
		"Actúa como un coach financiero empático para el reto TraderMexico.mx.",
		"",
		"Datos del participante:",
		"- Nombre: " + in.Name,
		fmt.Sprintf("- Perfil: %s (%s)", in.ProfileName, in.ProfileCode),
		"- Nivel: " + in.Level,
		"- Capital total: USD " + in.CapitalTotal,
		"- Capital con trader: USD " + in.CapitalTrader,
		"- Capital libre: USD " + in.CapitalFree,
		"",
		"Instrucciones:",
		"- Escribe un horóscopo financiero emocional, profesional y motivador.",
		"- 2 a 3 párrafos cortos.",
		"- Termina con dos bullets de “Siguientes pasos”.",
		"- Responde SOLO en HTML (<p> <strong> <ul> <li>).",
	}, "\n")
	return s.complete(ctx, "interpret_profile", prompt)
}

// TraderProfile classifies the score and describes the assigned operator.
func (s *ScoringService) TraderProfile(ctx context.Context, in TraderInput) (*TraderResult, error) {
	operator := firstNonEmpty(in.Operator, DefaultOperator)
	level := ClassifyTrader(in.Score)

	prompt := strings.Join([]string{
		"Actúa como un coach financiero experto que describe las características ideales de un gestor u operador de trading para un cliente.",
		"",
		"Datos del cliente:",
		fmt.Sprintf("- Puntaje total del test: %d (rango 5–15).", in.Score),
		"- Nivel asignado: " + level + ".",
		"- Operador asignado: " + operator + ".",
		"- Respuestas numéricas (p1..p5): " + formatAnswers(in.Answers) + ".",
		"",
		"Instrucciones:",
		"- Escribe una descripción del operador ideal en español, profesional y motivadora.",
		fmt.Sprintf("- Describe las características que el operador %s debe tener para complementar al cliente, según el nivel %s y su puntaje.", operator, level),
		"- Extensión: 2 párrafos cortos.",
		"- No repitas los datos numéricos literalmente.",
		"- No uses listas, viñetas ni HTML. Solo texto plano.",
		"- Usa un tono de recomendación profesional.",
	}, "\n")

	desc, err := s.complete(ctx, "trader_profile", prompt)
	if err != nil {
		return nil, err
	}
	return &TraderResult{
		Profile:     operator,
		Level:       level,
		Description: desc,
		Score:       in.Score,
		Answers:     nonNilAnswers(in.Answers),
	}, nil
}

// IkarusAptitude classifies the aptitude score and writes feedback for the
// candidate.
func (s *ScoringService) IkarusAptitude(ctx context.Context, in AptitudeInput) (*AptitudeResult, error) {
	name := firstNonEmpty(in.Name, DefaultProfileInput().Name)
	aptitude := ClassifyAptitude(in.Score)

	prompt := strings.Join([]string{
		"Actúa como un coach financiero que evalúa si una persona está lista para operar con el programa Ikarus de TraderMexico.mx.",
		"",
		"Datos del candidato:",
		"- Nombre: " + name,
		fmt.Sprintf("- Puntaje del test de aptitud: %d.", in.Score),
		"- Resultado: " + aptitude + ".",
		"- Respuestas: " + formatAnswers(in.Answers) + ".",
		"",
		"Instrucciones:",
		"- Explica el resultado en 1 o 2 párrafos cortos, con tono motivador y honesto.",
		"- Si el resultado no es APTO, sugiere qué reforzar antes de volver a intentarlo.",
		"- Solo texto plano, sin HTML.",
	}, "\n")

	msg, err := s.complete(ctx, "ikarus_aptitude", prompt)
	if err != nil {
		return nil, err
	}
	return &AptitudeResult{
		Aptitude: aptitude,
		Fit:      aptitude == AptitudeFit,
		Message:  msg,
		Score:    in.Score,
		Answers:  nonNilAnswers(in.Answers),
	}, nil
}

func (s *ScoringService) complete(ctx context.Context, purpose, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "scoring."+purpose)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := domain.SystemPrompt(scoringSystemPrompt, prompt)
	text, err := breaker.Call(s.cb, func() (string, error) {
		return s.llm.Chat(ctx, s.model, scoringTemperature, messages)
	})
	if err != nil {
		uerr := completionError(err)
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.code", string(uerr.Code)))
		s.metrics.RecordCompletion(purpose, "error")
		s.logger.Error("scoring completion failed", zap.String("purpose", purpose), zap.Error(err))
		return "", uerr
	}
	s.metrics.RecordCompletion(purpose, "ok")
	return strings.TrimSpace(text), nil
}

// formatAnswers renders questionnaire answers for a prompt. Lists become
// "[a, b]"; other JSON values are rendered as JSON.
func formatAnswers(answers any) string {
	switch a := answers.(type) {
	case nil:
		return "[]"
	case []any:
		parts := make([]string, 0, len(a))
		for _, v := range a {
			parts = append(parts, domain.Text(v))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		if raw, err := json.Marshal(a); err == nil {
			return string(raw)
		}
		return domain.Text(a)
	}
}

// nonNilAnswers reports missing answers as an empty list.
func nonNilAnswers(answers any) any {
	if answers == nil {
		return []any{}
	}
	return answers
}
