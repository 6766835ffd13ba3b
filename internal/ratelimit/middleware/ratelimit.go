package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"landing/internal/ratelimit/metrics"
	"landing/internal/ratelimit/models"
	"landing/pkg/platform/httputil"
	"landing/pkg/requestcontext"
)

const limitedMessage = "Too many requests. Please try again later."

// RateLimiter is the decision source the middleware consults.
type RateLimiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, bool, error)
}

type Middleware struct {
	limiter  RateLimiter
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for local development).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Limit allows at most limit requests per client IP per window for scope.
// Store errors fail open.
func (m *Middleware) Limit(scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.disabled || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, degraded, err := m.limiter.Check(ctx, models.Key(scope, ip), limit, window)
			if err != nil {
				m.logger.Error("failed to check rate limit", "error", err, "scope", scope)
				if m.metrics != nil {
					m.metrics.IncrementStoreErrors()
				}
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if degraded {
				w.Header().Set("X-RateLimit-Status", "degraded")
			}
			if m.metrics != nil {
				m.metrics.IncrementDecision(scope, result.Allowed)
			}

			if !result.Allowed {
				m.logger.Warn("rate limit exceeded", "scope", scope, "retry_after", result.RetryAfter)
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
		OK:      false,
		Message: limitedMessage,
	})
}
