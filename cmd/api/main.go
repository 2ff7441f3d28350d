package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lumen-creative/leadchat/internal/analysis/intent"
	"github.com/lumen-creative/leadchat/internal/analysis/outguard"
	"github.com/lumen-creative/leadchat/internal/analysis/policy"
	"github.com/lumen-creative/leadchat/internal/config"
	"github.com/lumen-creative/leadchat/internal/crm"
	"github.com/lumen-creative/leadchat/internal/handler"
	"github.com/lumen-creative/leadchat/internal/service/ai"
	"github.com/lumen-creative/leadchat/internal/service/pipeline"
	sessionstore "github.com/lumen-creative/leadchat/internal/storage/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using system environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, closeLog := config.SetupLogger(cfg.Log)
	defer closeLog()
	slog.SetDefault(logger)

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		logger.Error("failed to load rules", "error", err)
		os.Exit(1)
	}

	filter := policy.NewFilter(rules.RestrictedTopics)
	validator := outguard.New(filter, rules.ContactChannel)

	store, pinger := buildStore(ctx, cfg.Session, logger)
	classifier, generator := buildAI(ctx, cfg.AI, logger)

	var upserter crm.Upserter
	if cfg.CRM.Enabled() {
		upserter = crm.NewClient(cfg.CRM.BaseURL, cfg.CRM.APIKey, cfg.CRM.Timeout)
		logger.Info("CRM gateway configured", "url", cfg.CRM.BaseURL)
	} else {
		logger.Info("no CRM configured, lead upserts disabled")
	}

	pipelineSvc := pipeline.NewService(store, classifier, generator, filter, validator, upserter, rules, cfg.Session.TTL, logger)

	router := handler.NewRouter(pipelineSvc, rules, pinger, logger)
	startServer(ctx, cfg.Server, router, logger)
}

// buildStore prefers Redis and falls back to the in-memory store, which is
// fine for development but forgets sessions on restart.
func buildStore(ctx context.Context, cfg config.SessionConfig, logger *slog.Logger) (sessionstore.Store, handler.Pinger) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, using in-memory session store")
		return sessionstore.NewMemoryStore(), nil
	}

	store, err := sessionstore.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory session store", "error", err)
		return sessionstore.NewMemoryStore(), nil
	}

	logger.Info("redis session store connected")
	return store, store
}

// buildAI assembles the classifier and generator strategies. Without model
// credentials both fall back to their deterministic implementations.
func buildAI(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (intent.Classifier, ai.Generator) {
	var classifier intent.Classifier = intent.NewRuleBased()
	var generator ai.Generator = ai.NewRulesGenerator()

	if !cfg.Enabled() {
		logger.Info("model credentials not configured, using rules-table generator")
		return classifier, generator
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		logger.Warn("failed to create chat model, using rules-table generator", "error", err)
		return classifier, generator
	}

	modelGen, err := ai.NewModelGenerator(ctx, chatModel, cfg.Model, cfg.CostPer1KTokens, cfg.Timeout)
	if err != nil {
		logger.Warn("failed to compile reply chain, using rules-table generator", "error", err)
	} else {
		generator = modelGen
		logger.Info("model generator initialized", "provider", cfg.Provider, "model", cfg.Model)
	}

	if cfg.ClassifierEnabled {
		modelCls, err := intent.NewModelBacked(ctx, chatModel, cfg.Timeout)
		if err != nil {
			logger.Warn("failed to compile classifier chain, using rule-based classifier", "error", err)
		} else {
			classifier = modelCls
			logger.Info("model-backed classifier enabled")
		}
	}

	return classifier, generator
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("leadchat backend listening", "addr", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
