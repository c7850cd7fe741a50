package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tribehive/ai-orchestrator/internal/server/middleware"
	v1 "github.com/tribehive/ai-orchestrator/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.ErrorHandler(s.logger))

	// Public surface
	healthHandler := v1.NewHealthHandler(s.deps.Engine)
	s.router.GET("/health", healthHandler.Health)
	if s.deps.Gatherer != nil {
		s.router.GET("/metrics", func(c *gin.Context) {
			promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}).ServeHTTP(c.Writer, c.Request)
		})
	}

	// Authenticated v1 API
	api := s.router.Group("/api/v1")
	api.Use(middleware.Auth(s.config.APIKeys))

	limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)
	api.Use(limiter.Middleware())

	requestHandler := v1.NewRequestHandler(s.deps.Engine, s.deps.Queue, s.logger)
	api.POST("/requests", requestHandler.Create)
	api.POST("/requests/batch", requestHandler.CreateBatch)
	api.GET("/requests/:id", requestHandler.Get)
	api.POST("/requests/:id/cancel", requestHandler.Cancel)
	api.GET("/requests/:id/response", requestHandler.GetResponse)

	templateHandler := v1.NewTemplateHandler(s.deps.Repo, s.deps.Renderer, s.logger)
	api.POST("/templates", templateHandler.Create)
	api.GET("/templates", templateHandler.List)
	api.GET("/templates/:id", templateHandler.Get)
	api.PUT("/templates/:id", templateHandler.Update)

	configHandler := v1.NewConfigHandler(s.deps.Repo, s.logger)
	api.POST("/configs", configHandler.Create)
	api.GET("/configs", configHandler.List)
	api.GET("/configs/:id", configHandler.Get)
	api.POST("/configs/:id/default", configHandler.SetDefault)

	modelHandler := v1.NewModelHandler(s.deps.Registry, s.logger)
	api.GET("/models", modelHandler.List)
	api.GET("/models/detail/*id", modelHandler.Get)
	api.POST("/models/refresh", modelHandler.Refresh)

	analyticsHandler := v1.NewAnalyticsHandler(s.deps.Analytics)
	api.GET("/analytics/activity", analyticsHandler.Activity)
}
