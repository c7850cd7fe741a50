package ports

import (
	"context"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
)

// Processor is the engine-side entry point the queue drives.
type Processor interface {
	Process(ctx context.Context, requestID string) (*domain.OrchestrationResponse, error)
}

// Queue admits requests into the processor in priority order while never
// exceeding its configured concurrency budget.
type Queue interface {
	// Enqueue registers a request for background processing and returns
	// immediately.
	Enqueue(requestID string, priority domain.Priority) error

	Start(ctx context.Context)
	Stop()
}
