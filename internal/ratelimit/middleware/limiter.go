package middleware

import (
	"context"
	"log/slog"
	"time"

	"landing/internal/ratelimit/models"
	"landing/pkg/platform/circuit"
)

// Store is a sliding window counter keyed by bucket.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// Limiter checks the primary store and, when a fallback is configured, falls
// back to it while the breaker is open so a Redis outage degrades to
// per-replica limits instead of no limits.
type Limiter struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type LimiterOption func(*Limiter)

// WithFallback routes checks to fallback while breaker is open.
func WithFallback(fallback Store, breaker *circuit.Breaker) LimiterOption {
	return func(l *Limiter) {
		l.fallback = fallback
		l.breaker = breaker
	}
}

func WithLimiterLogger(logger *slog.Logger) LimiterOption {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func NewLimiter(primary Store, opts ...LimiterOption) *Limiter {
	l := &Limiter{primary: primary, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check reports the decision for key. degraded is true when the answer came
// from the fallback store.
func (l *Limiter) Check(ctx context.Context, key string, limit int, window time.Duration) (result *models.Result, degraded bool, err error) {
	if l.fallback == nil || l.breaker == nil {
		result, err = l.primary.Allow(ctx, key, limit, window)
		return result, false, err
	}

	if !l.breaker.Allow() {
		result, err = l.fallback.Allow(ctx, key, limit, window)
		return result, true, err
	}

	result, err = l.primary.Allow(ctx, key, limit, window)
	if err != nil {
		useFallback, change := l.breaker.RecordFailure()
		if change.Opened {
			l.logger.Warn("rate limit store unavailable, using in-memory fallback", "error", err)
		}
		if !useFallback {
			return nil, false, err
		}
		result, err = l.fallback.Allow(ctx, key, limit, window)
		return result, true, err
	}
	if _, change := l.breaker.RecordSuccess(); change.Closed {
		l.logger.Info("rate limit store recovered")
	}
	return result, false, nil
}
