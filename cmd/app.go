package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trader-bot/handler"
	"trader-bot/internal/breaker"
	"trader-bot/internal/config"
	"trader-bot/internal/identity"
	"trader-bot/internal/integrations/directory"
	"trader-bot/internal/integrations/openai"
	"trader-bot/internal/integrations/paramstore"
	"trader-bot/internal/ledger"
	"trader-bot/internal/observability"
	"trader-bot/internal/repository"
	"trader-bot/internal/usecase"
)

const serviceName = "trader-bot"

// app is the wired service.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	router   *chi.Mux
	shutdown func(context.Context) error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	shutdownTracing, err := observability.InitTracing(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	// ---- AWS (only when something needs it) ----
	var (
		awsCfg aws.Config
		params *paramstore.Client
	)
	if cfg.ParamPrefix != "" || cfg.DirectoryTable != "" {
		if awsCfg, err = awsconfig.LoadDefaultConfig(ctx); err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		if cfg.ParamPrefix != "" {
			if params, err = paramstore.New(awsssm.NewFromConfig(awsCfg)); err != nil {
				return nil, err
			}
		}
	}

	// ---- Startup reads ----
	var (
		knowledge string
		settings  map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, ok := usecase.LoadKnowledge(cfg.KnowledgeFile)
		if !ok {
			logger.Warn("knowledge file unavailable, using placeholder", zap.String("path", cfg.KnowledgeFile))
		}
		knowledge = text
		return nil
	})
	if params != nil {
		g.Go(func() error {
			var err error
			settings, err = params.Settings(gctx, cfg.ParamPrefix)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := cfg.ApplyParameters(settings); err != nil {
			return nil, err
		}
	}

	// ---- Directory source ----
	var source identity.Source
	switch {
	case cfg.DirectoryURL != "":
		source, err = directory.New(cfg.DirectoryURL,
			directory.WithHTTPClient(&http.Client{Timeout: cfg.DirectoryTimeout}),
			directory.WithBreaker(breaker.New(breaker.DefaultConfig("directory"), logger)),
		)
	case cfg.DirectoryTable != "":
		source, err = repository.NewDirectoryTable(awsdynamodb.NewFromConfig(awsCfg), cfg.DirectoryTable)
	default:
		msg := "no user directory configured, every sender is unregistered"
		if cfg.IsProduction() {
			logger.Error(msg)
		} else {
			logger.Warn(msg)
		}
	}
	if err != nil {
		return nil, err
	}

	// ---- Completion client ----
	opts := []openai.Option{openai.WithBaseURL(cfg.OpenAIBaseURL)}
	if cfg.OpenAIAPIKey != "" {
		opts = append(opts, openai.WithAPIKey(cfg.OpenAIAPIKey))
	} else if params != nil {
		opts = append(opts, openai.WithParamStore(params, cfg.ParamPrefix))
	}
	llm, err := openai.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	completionBreaker := breaker.New(breaker.DefaultConfig("openai"), logger)

	// ---- Core ----
	store := ledger.NewMemory(cfg.LedgerMaxEntries, cfg.LedgerTTL)
	metrics := observability.NewCollector("trader_bot", store.Len)

	responder, err := usecase.NewResponder(llm, usecase.ResponderConfig{
		Model:     cfg.OpenAIModel,
		Knowledge: knowledge,
		Timeout:   cfg.CompletionTimeout,
	}, completionBreaker, metrics, logger)
	if err != nil {
		return nil, err
	}

	replies, err := usecase.NewReplyService(
		identity.NewResolver(source, logger),
		store,
		responder,
		usecase.Links{
			Registration:         cfg.Links.Registration,
			SchedulingBase:       cfg.Links.SchedulingBase,
			SchedulingIntermedio: cfg.Links.SchedulingIntermedio,
			SchedulingAvanzado:   cfg.Links.SchedulingAvanzado,
			Event:                cfg.Links.Event,
		},
		metrics,
		logger,
	)
	if err != nil {
		return nil, err
	}

	scoring, err := usecase.NewScoringService(llm, cfg.OpenAIModel, cfg.CompletionTimeout, completionBreaker, metrics, logger)
	if err != nil {
		return nil, err
	}

	// ---- HTTP ----
	h, err := handler.NewHandler(replies, scoring, logger)
	if err != nil {
		return nil, err
	}
	router := h.Router(handler.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        metrics,
	})

	logger.Info("service initialized",
		zap.String("environment", cfg.Environment),
		zap.Bool("directory", source != nil),
		zap.Int("ledger_max_entries", cfg.LedgerMaxEntries),
	)

	return &app{
		cfg:    cfg,
		logger: logger,
		router: router,
		shutdown: func(ctx context.Context) error {
			_ = logger.Sync()
			return shutdownTracing(ctx)
		},
	}, nil
}
