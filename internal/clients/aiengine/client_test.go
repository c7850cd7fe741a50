package aiengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
	"github.com/tribehive/ai-orchestrator/internal/httpclient"
	"github.com/tribehive/ai-orchestrator/internal/retry"
	"github.com/tribehive/ai-orchestrator/pkg/schema"
)

func testClient(t *testing.T, url string, attempts int) *Client {
	t.Helper()
	return New(
		Config{BaseURL: url, APIKey: "sk-test"},
		retry.Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, Jitter: 0.2},
		zap.NewNop(),
		ports.NopMetrics{},
	)
}

func TestMatching_Success(t *testing.T) {
	var gotCorrelation atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/matching", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		gotCorrelation.Store(r.Header.Get(httpclient.CorrelationHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches":[{"tribeId":"t1","score":0.91}],"model":"m1"}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 3)
	res, err := c.Matching(context.Background(), &schema.MatchingRequest{
		MatchingType: "user_tribe",
		Data:         map[string]any{"user_profile": map[string]any{"id": "u1"}},
	})
	require.NoError(t, err)

	matches, ok := res.Field("matches")
	assert.True(t, ok)
	assert.NotEmpty(t, matches)
	assert.NotEmpty(t, gotCorrelation.Load(), "correlation id header must be set")
}

func TestMatching_MissingFieldFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 1)
	_, err := c.Matching(context.Background(), &schema.MatchingRequest{MatchingType: "user_tribe"})

	require.Error(t, err)
	assert.Equal(t, domain.KindServiceUnavailable, domain.KindOf(err))
}

func TestMatching_RetriesOn503ThenFails(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 3)
	_, err := c.Matching(context.Background(), &schema.MatchingRequest{MatchingType: "user_tribe"})

	require.Error(t, err)
	assert.Equal(t, domain.KindServiceUnavailable, domain.KindOf(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "all attempts within the retry budget are used")
}

func TestMatching_NoRetryOnAuthFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 5)
	_, err := c.Matching(context.Background(), &schema.MatchingRequest{MatchingType: "user_tribe"})

	require.Error(t, err)
	assert.Equal(t, domain.KindAuthentication, domain.KindOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestMatching_NoRetryOnValidationFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 5)
	_, err := c.Matching(context.Background(), &schema.MatchingRequest{MatchingType: "user_tribe"})

	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestMatching_RateLimitClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 2)
	_, err := c.Matching(context.Background(), &schema.MatchingRequest{MatchingType: "user_tribe"})

	require.Error(t, err)
	assert.Equal(t, domain.KindRateLimit, domain.KindOf(err))
}

func TestTribeFormation_RequiresTribesField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tribes":[{"members":["u1","u2"]}]}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 1)
	res, err := c.Matching(context.Background(), &schema.MatchingRequest{MatchingType: "tribe_formation"})
	require.NoError(t, err)

	tribes, ok := res.Field("tribes")
	assert.True(t, ok)
	assert.NotEmpty(t, tribes)
}

func TestEngagement_FieldPerOperation(t *testing.T) {
	cases := []struct {
		engagementType string
		field          string
		body           string
	}{
		{"prompts", "prompts", `{"prompts":["what got you into climbing?"]}`},
		{"challenges", "challenge", `{"challenge":{"title":"photo scavenger hunt"}}`},
		{"activities", "activities", `{"activities":[{"name":"trivia night"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.engagementType, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/engagement", r.URL.Path)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := testClient(t, srv.URL, 1)
			res, err := c.Engagement(context.Background(), &schema.EngagementRequest{EngagementType: tc.engagementType})
			require.NoError(t, err)

			val, ok := res.Field(tc.field)
			assert.True(t, ok)
			assert.NotEmpty(t, val)
		})
	}
}

func TestEngagement_ChallengePayloadWithoutPromptsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"challenge":{"title":"cook-off","timeframe":"1 week"}}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 1)
	res, err := c.Engagement(context.Background(), &schema.EngagementRequest{EngagementType: "challenges"})
	require.NoError(t, err)

	_, hasPrompts := res.Field("prompts")
	assert.False(t, hasPrompts)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 1)
	assert.NoError(t, c.Health(context.Background()))
}
