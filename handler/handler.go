// Package handler exposes the bot webhook and the scoring endpoints over a chi
// router. The same router serves both the standalone HTTP server and Lambda.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"trader-bot/internal/usecase"
)

// HealthText is served on the root path.
const HealthText = "Servicio de perfiles de trader activo y listo para asignar operadores"

const correlationHeader = "X-Correlation-Id"

type Replier interface {
	Reply(ctx context.Context, in usecase.ReplyInput) usecase.ReplyOutput
}

type Scorer interface {
	InterpretProfile(ctx context.Context, in usecase.ProfileInput) (string, error)
	TraderProfile(ctx context.Context, in usecase.TraderInput) (*usecase.TraderResult, error)
	IkarusAptitude(ctx context.Context, in usecase.AptitudeInput) (*usecase.AptitudeResult, error)
}

// Metrics is the HTTP side of the observability collector.
type Metrics interface {
	ObserveHTTP(method, route, status string, d time.Duration)
	Handler() http.Handler
}

type Options struct {
	AllowedOrigins []string
	// Metrics may be nil, in which case /metrics is not mounted.
	Metrics Metrics
}

type Handler struct {
	replies Replier
	scoring Scorer
	logger  *zap.Logger
}

func NewHandler(replies Replier, scoring Scorer, logger *zap.Logger) (*Handler, error) {
	if replies == nil {
		return nil, errors.New("handler: replier must not be nil")
	}
	if scoring == nil {
		return nil, errors.New("handler: scorer must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{replies: replies, scoring: scoring, logger: logger}, nil
}

// Router builds the chi mux with every route and middleware mounted.
func (h *Handler) Router(opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(correlationID)
	r.Use(requestLogger(h.logger))
	if opts.Metrics != nil {
		r.Use(observeHTTP(opts.Metrics))
	}
	r.Use(chimiddleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", correlationHeader},
		ExposedHeaders: []string{correlationHeader},
		MaxAge:         300,
	}))

	r.Get("/", h.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Post("/webhook", h.webhook)
	r.Post("/whatsapp", h.webhook)

	r.Post("/interpretar-perfil", h.interpretProfile)
	r.Post("/perfil-trader", h.traderProfile)
	r.Post("/aptitud-ikarus", h.ikarusAptitude)

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(HealthText))
}

// correlationID echoes the caller's correlation id or mints a new one.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(correlationHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(correlationHeader, id)
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("requestID", chimiddleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Error: code})
}

func statusForError(err error) (int, string) {
	var uerr *usecase.Error
	if !errors.As(err, &uerr) {
		return http.StatusInternalServerError, string(usecase.ErrorInternal)
	}
	switch uerr.Code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest, string(uerr.Code)
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests, string(uerr.Code)
	case usecase.ErrorUpstream:
		return http.StatusBadGateway, string(uerr.Code)
	default:
		return http.StatusInternalServerError, string(usecase.ErrorInternal)
	}
}
