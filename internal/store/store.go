package store

import (
	"context"

	"github.com/tribehive/ai-orchestrator/internal/store/model"
)

// Repository is the main contract for the data layer.
type Repository interface {
	Requests() RequestRepository
	Responses() ResponseRepository
	Templates() TemplateRepository
	Configs() ConfigRepository
	Logs() ProcessingLogRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	GetByID(ctx context.Context, id string) (*model.Request, error)
	// UpdateStatus moves a request from one status to another. The guard is
	// part of the statement; zero rows affected means the request was not in
	// the expected status.
	UpdateStatus(ctx context.Context, id, from, to string) (bool, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]model.Request, error)
	ListByRequester(ctx context.Context, requesterID string, limit int) ([]model.Request, error)
}

type ResponseRepository interface {
	Create(ctx context.Context, resp *model.Response) error
	GetByRequestID(ctx context.Context, requestID string) (*model.Response, error)
}

type TemplateRepository interface {
	Create(ctx context.Context, tmpl *model.Template) error
	Update(ctx context.Context, tmpl *model.Template) error
	GetByID(ctx context.Context, id string) (*model.Template, error)
	// List filters by feature and/or category; empty strings match all.
	List(ctx context.Context, feature, category string, activeOnly bool) ([]model.Template, error)
}

type ConfigRepository interface {
	Create(ctx context.Context, cfg *model.Config) error
	Update(ctx context.Context, cfg *model.Config) error
	GetByID(ctx context.Context, id string) (*model.Config, error)
	// GetDefault returns the active default configuration for a feature.
	GetDefault(ctx context.Context, feature string) (*model.Config, error)
	ListByFeature(ctx context.Context, feature string) ([]model.Config, error)
	// SetDefault marks one configuration as the feature default, clearing
	// the flag on every other configuration of the same feature.
	SetDefault(ctx context.Context, id string) error
}

type ProcessingLogRepository interface {
	Insert(ctx context.Context, entry *model.ProcessingLog) error
	Recent(ctx context.Context, limit int) ([]model.ProcessingLog, error)
}
