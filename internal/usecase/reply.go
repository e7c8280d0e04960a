package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"trader-bot/internal/domain"
	"trader-bot/internal/identity"
	"trader-bot/internal/ledger"
	"trader-bot/internal/tier"
)

// UnregisteredReplyLimit is how many answers an unregistered sender gets
// before only the closing message is returned.
const UnregisteredReplyLimit = 3

// Routes reported for every reply.
const (
	RouteClosing         = "closing"
	RoutePreRegistration = "pre_registration"
	RouteOnboarding      = "onboarding"
	RouteMenu            = "menu"
	RouteScheduling      = "scheduling"
	RouteEvent           = "event"
	RouteMentor          = "mentor"
)

// Links are the static URLs handed out in canned replies.
type Links struct {
	Registration         string
	SchedulingBase       string
	SchedulingIntermedio string
	SchedulingAvanzado   string
	Event                string
}

type Resolver interface {
	Resolve(ctx context.Context, raw string) identity.Result
}

type Fallback interface {
	Respond(ctx context.Context, message, persona string) string
}

type ReplyInput struct {
	Body string
	From string
}

type ReplyOutput struct {
	Messages []string
	Tier     domain.Tier
	Route    string
}

// ReplyService picks the reply for one inbound message.
type ReplyService struct {
	gate     sync.Mutex
	resolver Resolver
	ledger   ledger.Store
	fallback Fallback
	links    Links
	metrics  Metrics
	logger   *zap.Logger
}

func NewReplyService(resolver Resolver, store ledger.Store, fallback Fallback, links Links, m Metrics, logger *zap.Logger) (*ReplyService, error) {
	if resolver == nil {
		return nil, errors.New("usecase: resolver must not be nil")
	}
	if store == nil {
		return nil, errors.New("usecase: ledger must not be nil")
	}
	if fallback == nil {
		return nil, errors.New("usecase: fallback responder must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplyService{
		resolver: resolver,
		ledger:   store,
		fallback: fallback,
		links:    links,
		metrics:  metricsOrNop(m),
		logger:   logger,
	}, nil
}

// Reply never fails. Directory and completion problems degrade to the
// unregistered flow and the apology text respectively.
func (s *ReplyService) Reply(ctx context.Context, in ReplyInput) ReplyOutput {
	ctx, span := tracer.Start(ctx, "reply")
	defer span.End()

	res := s.resolver.Resolve(ctx, in.From)
	s.metrics.RecordLookup(lookupOutcome(res))

	class := tier.Classify(res.Record, res.Found)
	span.SetAttributes(attribute.String("tier", string(class.Tier)))

	var text, route string
	switch class.Tier {
	case domain.TierUnregistered:
		text, route = s.unregistered(ctx, res.Key, in.Body)
	case domain.TierInactive:
		text, route = s.fallback.Respond(ctx, in.Body, onboardingPersona(class.Record)), RouteOnboarding
	default:
		text, route = s.active(ctx, class, in.Body)
	}

	span.SetAttributes(attribute.String("route", route))
	s.metrics.RecordReply(string(class.Tier), route)
	s.logger.Info("reply",
		zap.String("identity", res.Key),
		zap.String("tier", string(class.Tier)),
		zap.String("level", class.Level),
		zap.String("route", route),
	)

	return ReplyOutput{Messages: []string{text}, Tier: class.Tier, Route: route}
}

func (s *ReplyService) unregistered(ctx context.Context, key, body string) (string, string) {
	if !s.admit(key) {
		return closingMessage(s.links), RouteClosing
	}
	return s.fallback.Respond(ctx, body, preRegistrationPersona(s.links)), RoutePreRegistration
}

// admit counts one more answer for an unregistered sender, or reports false
// once the limit is reached. The counter stops growing at the limit.
func (s *ReplyService) admit(key string) bool {
	s.gate.Lock()
	defer s.gate.Unlock()
	if s.ledger.Get(key) >= UnregisteredReplyLimit {
		return false
	}
	s.ledger.Increment(key)
	return true
}

func (s *ReplyService) active(ctx context.Context, class domain.Classification, body string) (string, string) {
	text := strings.ToLower(body)
	switch {
	case containsAny(text, greetingTriggers):
		return menuMessage(class.Record.Name, class.Level), RouteMenu
	case containsAny(text, schedulingTriggers):
		return schedulingMessage(class.Level, s.links), RouteScheduling
	case containsAny(text, eventTriggers):
		return eventMessage(s.links), RouteEvent
	default:
		return s.fallback.Respond(ctx, body, mentorPersona(class.Level, class.Record)), RouteMentor
	}
}

func lookupOutcome(res identity.Result) string {
	switch {
	case res.Err != nil:
		return "error"
	case res.Found:
		return "match"
	default:
		return "miss"
	}
}
