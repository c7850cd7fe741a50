package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
)

// PriorityQueue schedules request processing with a fixed worker budget.
// Pending ids sit in one slice per priority level; workers always drain the
// highest non-empty level first. Ordering among equal priorities follows
// insertion but is not guaranteed once multiple workers race.
type PriorityQueue struct {
	processor   ports.Processor
	metrics     ports.Metrics
	logger      *zap.Logger
	concurrency int

	mu      sync.Mutex
	pending [domain.PriorityLevels][]string
	signal  chan struct{}

	stopOnce sync.Once
	stopped  chan struct{}
	wg       sync.WaitGroup
}

func NewPriorityQueue(processor ports.Processor, metrics ports.Metrics, logger *zap.Logger, concurrency int) *PriorityQueue {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PriorityQueue{
		processor:   processor,
		metrics:     metrics,
		logger:      logger,
		concurrency: concurrency,
		signal:      make(chan struct{}, 1),
		stopped:     make(chan struct{}),
	}
}

// Enqueue registers a request and returns immediately.
func (q *PriorityQueue) Enqueue(requestID string, priority domain.Priority) error {
	if priority < domain.PriorityLow || priority > domain.PriorityCritical {
		return domain.BadRequestError("unknown priority level")
	}

	q.mu.Lock()
	q.pending[priority] = append(q.pending[priority], requestID)
	depth := len(q.pending[priority])
	q.mu.Unlock()

	q.metrics.QueueDepth(priority.String(), depth)
	q.wake()
	return nil
}

func (q *PriorityQueue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled or
// Stop is called.
func (q *PriorityQueue) Start(ctx context.Context) {
	for i := 0; i < q.concurrency; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

func (q *PriorityQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	for {
		requestID, ok := q.dequeue()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-q.stopped:
				return
			case <-q.signal:
				continue
			}
		}

		if _, err := q.processor.Process(ctx, requestID); err != nil {
			q.logger.Warn("queued request failed",
				zap.String("request_id", requestID),
				zap.Int("worker", id),
				zap.Error(err))
		}
		// More work may remain; make sure an idle sibling also looks.
		q.wake()
	}
}

// dequeue pops the oldest id from the highest non-empty priority level.
func (q *PriorityQueue) dequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for p := domain.PriorityCritical; p >= domain.PriorityLow; p-- {
		if len(q.pending[p]) == 0 {
			continue
		}
		id := q.pending[p][0]
		q.pending[p] = q.pending[p][1:]
		q.metrics.QueueDepth(p.String(), len(q.pending[p]))
		return id, true
	}
	return "", false
}

// Stop signals workers to finish their current item and exit, then waits.
func (q *PriorityQueue) Stop() {
	q.stopOnce.Do(func() { close(q.stopped) })
	q.wg.Wait()
}

var _ ports.Queue = (*PriorityQueue)(nil)
