package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg)

	m.RequestCreated("MATCHING")
	m.RequestCreated("MATCHING")
	m.RequestFinished("MATCHING", "gpt-4o", "COMPLETED")
	m.ClientError("ai-engine", "rate_limit")
	m.ClientRetry("ai-engine")
	m.CacheHit("response")
	m.CacheMiss("models")
	m.QueueDepth("HIGH", 3)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requestsCreated.WithLabelValues("MATCHING")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsFinished.WithLabelValues("MATCHING", "gpt-4o", "COMPLETED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.clientErrors.WithLabelValues("ai-engine", "rate_limit")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.queueDepth.WithLabelValues("HIGH")))
}

func TestHistogramObserved(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg)

	m.ProcessingDuration("ENGAGEMENT", "claude-3-5-sonnet", 1.5)

	families, err := reg.Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if f.GetName() == "orchestrator_processing_duration_seconds" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, uint64(1), f.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
	assert.True(t, found)
}
