package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/adapters/cache/memory"
	"github.com/tribehive/ai-orchestrator/internal/adapters/cache/redis"
	"github.com/tribehive/ai-orchestrator/internal/analytics"
	"github.com/tribehive/ai-orchestrator/internal/clients/aiengine"
	"github.com/tribehive/ai-orchestrator/internal/clients/openrouter"
	"github.com/tribehive/ai-orchestrator/internal/config"
	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
	"github.com/tribehive/ai-orchestrator/internal/core/services"
	"github.com/tribehive/ai-orchestrator/internal/core/services/prompt"
	"github.com/tribehive/ai-orchestrator/internal/platform/logger"
	"github.com/tribehive/ai-orchestrator/internal/platform/metrics"
	"github.com/tribehive/ai-orchestrator/internal/platform/otel"
	"github.com/tribehive/ai-orchestrator/internal/retry"
	"github.com/tribehive/ai-orchestrator/internal/server"
	"github.com/tribehive/ai-orchestrator/internal/store/sqlite"
	"github.com/tribehive/ai-orchestrator/internal/version"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logFormat := "console"
	if cfg.Server.Env == "production" {
		logFormat = "json"
	}
	logger.Initialize(logger.Config{Level: "info", Format: logFormat, EnableColor: logFormat == "console"})
	defer logger.Sync()
	log := logger.Get()

	go version.CheckForUpdates(log)

	shutdownTracer, err := otel.InitTracer("ai-orchestrator", log, os.Stdout)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	prom := metrics.NewPrometheus(registry)

	repo, err := sqlite.NewSQLiteStorage(cfg.Database.DSN, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer repo.Close()

	var cache ports.CacheService
	if cfg.Redis.Enabled {
		rc := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Ping(context.Background()); err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		cache = rc
		log.Info("using redis cache", zap.String("addr", cfg.Redis.Addr))
	} else {
		cache = memory.New()
		log.Info("using in-memory cache")
	}

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		Jitter:      cfg.Retry.Jitter,
	}

	engineClient := aiengine.New(aiengine.Config{
		BaseURL: cfg.Providers.AIEngine.BaseURL,
		APIKey:  cfg.Providers.AIEngine.APIKey,
		Timeout: cfg.Providers.AIEngine.Timeout,
	}, policy, log, prom)

	providerClient := openrouter.New(openrouter.Config{
		BaseURL: cfg.Providers.OpenRouter.BaseURL,
		APIKey:  cfg.Providers.OpenRouter.APIKey,
		Timeout: cfg.Providers.OpenRouter.Timeout,
	}, policy, log, prom)

	featureDefaults := map[domain.Feature]string{}
	for name, modelID := range cfg.Models.Defaults {
		feature, err := domain.ParseFeature(name)
		if err != nil {
			log.Fatal("invalid feature in models.defaults", zap.String("feature", name))
		}
		featureDefaults[feature] = modelID
	}

	modelRegistry := services.NewModelRegistry(providerClient, cache, prom, log, services.RegistryOptions{
		CatalogTTL:       cfg.Cache.CatalogTTL,
		Defaults:         featureDefaults,
		DefaultChatModel: cfg.Models.DefaultChatModel,
	})
	if err := modelRegistry.Refresh(context.Background()); err != nil {
		log.Warn("initial catalog refresh failed, serving fallback catalog", zap.Error(err))
	}

	renderer := prompt.NewRenderer(repo, cache, log, cfg.Cache.TemplateTTL)
	for _, feature := range domain.Features() {
		if err := renderer.EnsureDefaults(context.Background(), feature); err != nil {
			log.Fatal("failed to seed default templates",
				zap.String("feature", string(feature)), zap.Error(err))
		}
	}

	ingestor := analytics.NewIngestor(log, repo)

	engine := services.NewEngine(repo, cache, modelRegistry, renderer, engineClient,
		providerClient, ingestor, prom, log,
		services.EngineOptions{ResponseTTL: cfg.Cache.ResponseTTL})

	queue := services.NewPriorityQueue(engine, prom, log, cfg.Queue.Concurrency)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The ingestor outlives the signal context so Stop can drain the buffer.
	ingestor.Start(context.Background())
	queue.Start(ctx)

	refresher := services.NewCatalogRefresher(modelRegistry, log, cfg.Cache.CatalogTTL)
	refresher.Start(ctx)

	srv := server.New(cfg, log, server.Dependencies{
		Engine:    engine,
		Queue:     queue,
		Registry:  modelRegistry,
		Renderer:  renderer,
		Repo:      repo,
		Analytics: analytics.NewService(repo),
		Gatherer:  registry,
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	refresher.Stop()
	queue.Stop()
	ingestor.Stop()
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}
}
