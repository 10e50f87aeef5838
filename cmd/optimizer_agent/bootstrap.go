package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jonathan/profile-optimizer/internal/config"
	"github.com/jonathan/profile-optimizer/internal/invoker"
	"github.com/jonathan/profile-optimizer/internal/llm"
	"github.com/jonathan/profile-optimizer/internal/parsing"
	"github.com/jonathan/profile-optimizer/internal/pipeline"
	"github.com/jonathan/profile-optimizer/internal/ratelimit"
	"github.com/jonathan/profile-optimizer/internal/session"
	"github.com/jonathan/profile-optimizer/internal/store"
)

// runtime bundles everything a command needs after bootstrap.
type runtime struct {
	cfg      *config.Config
	registry *llm.Registry
	service  *pipeline.Service
	sessions *session.Registry
	limiter  *ratelimit.Limiter
	db       *store.DB
	logger   *zap.Logger
}

// buildRuntime assembles adapters, limiter, invoker, parser, sessions and
// the pipeline service from environment configuration.
func buildRuntime(ctx context.Context, logger *zap.Logger) (*runtime, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	var adapters []llm.Adapter
	if cfg.OpenAIKey != "" {
		adapters = append(adapters, llm.NewOpenAIAdapter(cfg.OpenAIKey))
	}
	if cfg.AnthropicKey != "" {
		adapters = append(adapters, llm.NewAnthropicAdapter(cfg.AnthropicKey))
	}
	if cfg.GoogleAIKey != "" {
		gemini, err := llm.NewGeminiAdapter(ctx, cfg.GoogleAIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini adapter: %w", err)
		}
		adapters = append(adapters, gemini)
	}
	if cfg.CohereKey != "" {
		adapters = append(adapters, llm.NewCohereAdapter(cfg.CohereKey))
	}
	if len(adapters) == 0 {
		logger.Warn("no provider API keys configured, every request will fail selection")
	}

	registry := llm.NewRegistry(adapters...)
	limiter := ratelimit.NewLimiter(cfg.RateLimitCapacity, cfg.RateLimitWindow)
	inv := invoker.New(registry, limiter, cfg.ProviderTimeout, logger)
	parser := parsing.NewParser(logger)
	sessions := session.NewRegistry(cfg.SessionTTL)

	var recorder store.Recorder = store.Nop{}
	var database *store.DB
	if cfg.DatabaseURL != "" {
		database, err = store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("failed to connect to database, continuing without persistence", zap.Error(err))
		} else {
			recorder = database
		}
	}

	return &runtime{
		cfg:      cfg,
		registry: registry,
		service:  pipeline.NewService(registry, inv, parser, sessions, recorder, logger),
		sessions: sessions,
		limiter:  limiter,
		db:       database,
		logger:   logger,
	}, nil
}

// close releases runtime resources.
func (rt *runtime) close() {
	rt.limiter.Stop()
	rt.sessions.Stop()
	if err := rt.registry.Close(); err != nil {
		rt.logger.Warn("failed to close provider adapters", zap.Error(err))
	}
	if rt.db != nil {
		rt.db.Close()
	}
}
