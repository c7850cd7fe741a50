package analytics

import (
	"context"

	"github.com/tribehive/ai-orchestrator/internal/store"
	"github.com/tribehive/ai-orchestrator/internal/store/model"
)

// Service exposes read access to the processing audit trail.
type Service interface {
	RecentActivity(ctx context.Context, limit int) ([]model.ProcessingLog, error)
}

type service struct {
	repo store.Repository
}

func NewService(repo store.Repository) Service {
	return &service{repo: repo}
}

func (s *service) RecentActivity(ctx context.Context, limit int) ([]model.ProcessingLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.Logs().Recent(ctx, limit)
}
