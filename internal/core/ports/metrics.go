package ports

// Metrics is the sink for pipeline instrumentation. Implementations label
// series by feature, model and error classification.
type Metrics interface {
	RequestCreated(feature string)
	RequestFinished(feature, model, status string)
	ProcessingDuration(feature, model string, seconds float64)
	ClientError(provider, classification string)
	ClientRetry(provider string)
	CacheHit(cache string)
	CacheMiss(cache string)
	QueueDepth(priority string, depth int)
}

// NopMetrics discards every observation. Used in tests and as a default.
type NopMetrics struct{}

func (NopMetrics) RequestCreated(string)                      {}
func (NopMetrics) RequestFinished(string, string, string)     {}
func (NopMetrics) ProcessingDuration(string, string, float64) {}
func (NopMetrics) ClientError(string, string)                 {}
func (NopMetrics) ClientRetry(string)                         {}
func (NopMetrics) CacheHit(string)                            {}
func (NopMetrics) CacheMiss(string)                           {}
func (NopMetrics) QueueDepth(string, int)                     {}
