package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tribehive/ai-orchestrator/internal/core/ports"
)

// Prometheus implements ports.Metrics on a prometheus registry. All series
// share the "orchestrator" namespace so dashboards can scope on one prefix.
type Prometheus struct {
	requestsCreated    *prometheus.CounterVec
	requestsFinished   *prometheus.CounterVec
	processingDuration *prometheus.HistogramVec
	clientErrors       *prometheus.CounterVec
	clientRetries      *prometheus.CounterVec
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	queueDepth         *prometheus.GaugeVec
}

func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		requestsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orchestrator",
			Name:      "requests_created_total",
			Help:      "Total orchestration requests accepted",
		}, []string{"feature"}),
		requestsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orchestrator",
			Name:      "requests_finished_total",
			Help:      "Total orchestration requests that reached a terminal status",
		}, []string{"feature", "model", "status"}),
		processingDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orchestrator",
			Name:      "processing_duration_seconds",
			Help:      "Wall-clock processing time per request",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"feature", "model"}),
		clientErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orchestrator",
			Name:      "client_errors_total",
			Help:      "Upstream call failures by classification",
		}, []string{"provider", "error_type"}),
		clientRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orchestrator",
			Name:      "client_retries_total",
			Help:      "Upstream call attempts that were retried",
		}, []string{"provider"}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orchestrator",
			Name:      "cache_hits_total",
			Help:      "Cache lookups that returned a value",
		}, []string{"cache"}),
		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orchestrator",
			Name:      "cache_misses_total",
			Help:      "Cache lookups that missed or had expired",
		}, []string{"cache"}),
		queueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "orchestrator",
			Name:      "queue_depth",
			Help:      "Requests waiting per priority level",
		}, []string{"priority"}),
	}
}

func (m *Prometheus) RequestCreated(feature string) {
	m.requestsCreated.WithLabelValues(feature).Inc()
}

func (m *Prometheus) RequestFinished(feature, model, status string) {
	m.requestsFinished.WithLabelValues(feature, model, status).Inc()
}

func (m *Prometheus) ProcessingDuration(feature, model string, seconds float64) {
	m.processingDuration.WithLabelValues(feature, model).Observe(seconds)
}

func (m *Prometheus) ClientError(provider, classification string) {
	m.clientErrors.WithLabelValues(provider, classification).Inc()
}

func (m *Prometheus) ClientRetry(provider string) {
	m.clientRetries.WithLabelValues(provider).Inc()
}

func (m *Prometheus) CacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

func (m *Prometheus) CacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

func (m *Prometheus) QueueDepth(priority string, depth int) {
	m.queueDepth.WithLabelValues(priority).Set(float64(depth))
}

var _ ports.Metrics = (*Prometheus)(nil)
