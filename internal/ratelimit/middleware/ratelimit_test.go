package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landing/internal/ratelimit/metrics"
	"landing/internal/ratelimit/models"
	"landing/internal/ratelimit/store/bucket"
	"landing/pkg/platform/circuit"
	"landing/pkg/testutil"
)

type failingStore struct{ calls int }

func (f *failingStore) Allow(context.Context, string, int, time.Duration) (*models.Result, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func countingHandler(n *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*n++
		w.WriteHeader(http.StatusCreated)
	})
}

func post(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := testutil.WithClient(httptest.NewRequest(http.MethodPost, "/leads", nil), ip, "test")
	return testutil.DoRequest(h, req)
}

func TestLimitRejectsRequestsOverLimit(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	mw := New(NewLimiter(bucket.NewInMemoryBucketStore()), discardLogger(), WithMetrics(m))
	served := 0
	h := mw.Limit("leads", 2, time.Minute)(countingHandler(&served))

	for range 2 {
		rec := post(h, "10.0.0.1")
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := post(h, "10.0.0.1")

	testutil.AssertFailure(t, rec, http.StatusTooManyRequests, limitedMessage)
	assert.Equal(t, 2, served)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.InDelta(t, 2, promtestutil.ToFloat64(m.Decisions.WithLabelValues("leads", "allowed")), 0)
	assert.InDelta(t, 1, promtestutil.ToFloat64(m.Decisions.WithLabelValues("leads", "limited")), 0)
}

func TestLimitIsPerClientIP(t *testing.T) {
	mw := New(NewLimiter(bucket.NewInMemoryBucketStore()), discardLogger())
	served := 0
	h := mw.Limit("leads", 1, time.Minute)(countingHandler(&served))

	assert.Equal(t, http.StatusCreated, post(h, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(h, "10.0.0.1").Code)
	assert.Equal(t, http.StatusCreated, post(h, "10.0.0.2").Code)
	assert.Equal(t, 2, served)
}

func TestLimitFailsOpenOnStoreError(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	mw := New(NewLimiter(&failingStore{}), discardLogger(), WithMetrics(m))
	served := 0
	h := mw.Limit("leads", 1, time.Minute)(countingHandler(&served))

	for range 3 {
		assert.Equal(t, http.StatusCreated, post(h, "10.0.0.1").Code)
	}
	assert.Equal(t, 3, served)
	assert.InDelta(t, 3, promtestutil.ToFloat64(m.StoreErrors), 0)
}

func TestLimitDisabled(t *testing.T) {
	served := 0
	h := New(NewLimiter(&failingStore{}), discardLogger(), WithDisabled(true)).
		Limit("leads", 1, time.Minute)(countingHandler(&served))

	post(h, "10.0.0.1")
	post(h, "10.0.0.1")
	assert.Equal(t, 2, served)
}

func TestLimiterFallsBackWhileBreakerOpen(t *testing.T) {
	primary := &failingStore{}
	breaker := circuit.New("ratelimit", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Hour))
	limiter := NewLimiter(primary,
		WithFallback(bucket.NewInMemoryBucketStore(), breaker),
		WithLimiterLogger(discardLogger()))
	served := 0
	h := New(limiter, discardLogger()).Limit("leads", 1, time.Minute)(countingHandler(&served))

	rec := post(h, "10.0.0.1")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "degraded", rec.Header().Get("X-RateLimit-Status"))
	assert.True(t, breaker.IsOpen())

	rec = post(h, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, primary.calls, "open breaker should skip the primary store")
	assert.Equal(t, 1, served)
}
