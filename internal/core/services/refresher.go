package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/core/ports"
)

// CatalogRefresher re-pulls the provider catalog on a fixed interval so the
// registry never serves entries older than its TTL. A failed pull keeps the
// previous catalog; the registry reports itself stale until the next success.
type CatalogRefresher struct {
	registry ports.ModelRegistry
	logger   *zap.Logger
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewCatalogRefresher(registry ports.ModelRegistry, logger *zap.Logger, interval time.Duration) *CatalogRefresher {
	return &CatalogRefresher{
		registry: registry,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *CatalogRefresher) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *CatalogRefresher) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			if err := r.registry.Refresh(ctx); err != nil {
				r.logger.Warn("scheduled catalog refresh failed", zap.Error(err))
				continue
			}
			health := r.registry.Health(ctx)
			r.logger.Debug("catalog refreshed", zap.Int("models", health.Models))
		}
	}
}

func (r *CatalogRefresher) Stop() {
	close(r.stop)
	<-r.done
}
