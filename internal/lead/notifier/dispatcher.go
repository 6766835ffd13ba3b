package notifier

import (
	"context"
	"log/slog"
	"time"

	"landing/internal/lead/models"
	"landing/pkg/validation"
)

// Dispatcher delivers notifications from a bounded queue on one background
// goroutine. Enqueue never blocks; a full queue drops the notification.
type Dispatcher struct {
	notifier    Notifier
	queue       chan *models.Lead
	logger      *slog.Logger
	drainWindow time.Duration
	onResult    func(err error)
	onDrop      func()
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDrainWindow bounds how long Run keeps delivering queued items after
// its context is cancelled.
func WithDrainWindow(d time.Duration) DispatcherOption {
	return func(d2 *Dispatcher) {
		d2.drainWindow = d
	}
}

// WithResultHook is called after every delivery attempt with its error.
func WithResultHook(fn func(err error)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onResult = fn
	}
}

// WithDropHook is called when Enqueue finds the queue full.
func WithDropHook(fn func()) DispatcherOption {
	return func(d *Dispatcher) {
		d.onDrop = fn
	}
}

func NewDispatcher(n Notifier, size int, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	d := &Dispatcher{
		notifier:    n,
		queue:       make(chan *models.Lead, size),
		logger:      logger,
		drainWindow: 10 * time.Second,
		onResult:    func(error) {},
		onDrop:      func() {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enqueue schedules a notification and reports whether it was accepted.
func (d *Dispatcher) Enqueue(lead *models.Lead) bool {
	select {
	case d.queue <- lead:
		return true
	default:
		d.onDrop()
		d.logger.Warn("notification queue full, dropping",
			"lead_id", lead.ID,
			"phone", validation.MaskPhone(lead.Phone),
		)
		return false
	}
}

// Pending reports queued, undelivered notifications.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Run delivers until ctx is cancelled, then drains what is already queued
// within the drain window. It always returns nil so it can sit in an errgroup
// without tearing down its siblings.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return nil
		case lead := <-d.queue:
			d.deliver(ctx, lead)
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), d.drainWindow)
	defer cancel()
	for {
		select {
		case lead := <-d.queue:
			d.deliver(ctx, lead)
		default:
			return
		}
		if ctx.Err() != nil {
			if n := len(d.queue); n > 0 {
				d.logger.Warn("drain window elapsed, notifications abandoned", "pending", n)
			}
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, lead *models.Lead) {
	err := d.notifier.Notify(ctx, lead)
	d.onResult(err)
	if err != nil {
		d.logger.Error("async lead notification failed",
			"lead_id", lead.ID,
			"phone", validation.MaskPhone(lead.Phone),
			"error", err,
		)
	}
}
