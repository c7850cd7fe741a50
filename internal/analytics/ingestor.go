package analytics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/store"
	"github.com/tribehive/ai-orchestrator/internal/store/model"
)

// Ingestor handles the asynchronous persistence of processing logs, one
// audit record per terminal transition. Records are buffered and flushed in
// batches so the request path never blocks on audit writes.
type Ingestor interface {
	Record(entry *model.ProcessingLog)
	Start(ctx context.Context)
	Stop()
}

type ingestor struct {
	logger    *zap.Logger
	repo      store.Repository
	entries   chan *model.ProcessingLog
	done      chan struct{}
	batchSize int
	flushTime time.Duration

	mu     sync.RWMutex
	closed bool
}

func NewIngestor(logger *zap.Logger, repo store.Repository) Ingestor {
	return &ingestor{
		logger:    logger,
		repo:      repo,
		entries:   make(chan *model.ProcessingLog, 10000),
		done:      make(chan struct{}),
		batchSize: 50,
		flushTime: 5 * time.Second,
	}
}

func (i *ingestor) Record(entry *model.ProcessingLog) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.closed {
		i.logger.Warn("processing log ingestor stopped, dropping entry",
			zap.String("request_id", entry.RequestID))
		return
	}
	select {
	case i.entries <- entry:
	default:
		i.logger.Warn("processing log buffer full, dropping entry",
			zap.String("request_id", entry.RequestID))
	}
}

func (i *ingestor) Start(ctx context.Context) {
	go i.worker(ctx)
}

// Stop drains buffered entries and blocks until the final flush completes.
// Safe to call more than once; Record calls arriving afterwards are dropped.
func (i *ingestor) Stop() {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		<-i.done
		return
	}
	i.closed = true
	i.mu.Unlock()

	close(i.entries)
	<-i.done
}

func (i *ingestor) worker(ctx context.Context) {
	defer close(i.done)

	batch := make([]*model.ProcessingLog, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		for _, entry := range batch {
			if err := i.repo.Logs().Insert(context.Background(), entry); err != nil {
				i.logger.Error("failed to persist processing log",
					zap.String("request_id", entry.RequestID), zap.Error(err))
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry, ok := <-i.entries:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		}
	}
}
