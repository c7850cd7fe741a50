package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/analytics"
	"github.com/tribehive/ai-orchestrator/internal/config"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
	"github.com/tribehive/ai-orchestrator/internal/core/services"
	"github.com/tribehive/ai-orchestrator/internal/core/services/prompt"
	"github.com/tribehive/ai-orchestrator/internal/server/validator"
	"github.com/tribehive/ai-orchestrator/internal/store"
)

const serviceName = "ai-orchestrator"

// Dependencies carries everything the HTTP surface needs.
type Dependencies struct {
	Engine    *services.Engine
	Queue     ports.Queue
	Registry  ports.ModelRegistry
	Renderer  *prompt.Renderer
	Repo      store.Repository
	Analytics analytics.Service
	Gatherer  prometheus.Gatherer
}

type Server struct {
	router *gin.Engine
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func New(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator.InitValidator()

	engine := gin.New()
	engine.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(otelgin.Middleware(serviceName))

	s := &Server{
		router: engine,
		config: cfg,
		logger: logger,
		deps:   deps,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
