package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"landing/internal/lead/models"
	"landing/pkg/platform/circuit"
	"landing/pkg/platform/sentinel"
)

// Breaker guards a Notifier with a circuit breaker. While open, calls fail
// with sentinel.ErrCircuitOpen without contacting the backend.
type Breaker struct {
	next    Notifier
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewBreaker(next Notifier, breaker *circuit.Breaker, logger *slog.Logger) *Breaker {
	return &Breaker{next: next, breaker: breaker, logger: logger}
}

func (b *Breaker) Notify(ctx context.Context, lead *models.Lead) error {
	if !b.breaker.Allow() {
		return fmt.Errorf("%s: %w", b.breaker.Name(), sentinel.ErrCircuitOpen)
	}

	err := b.next.Notify(ctx, lead)
	if err != nil {
		if _, change := b.breaker.RecordFailure(); change.Opened {
			b.logger.WarnContext(ctx, "notifier circuit opened",
				"breaker", b.breaker.Name(),
				"error", err,
			)
		}
		return err
	}

	if _, change := b.breaker.RecordSuccess(); change.Closed {
		b.logger.InfoContext(ctx, "notifier circuit closed", "breaker", b.breaker.Name())
	}
	return nil
}
