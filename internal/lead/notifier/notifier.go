// Package notifier tells the business owner about new leads.
//
// SMTPNotifier sends one email per lead. Breaker wraps any Notifier so a dead
// mail server fails fast, and Dispatcher moves delivery off the request path
// when LEAD_NOTIFY_MODE=async.
package notifier

import (
	"context"
	"log/slog"

	"landing/internal/lead/models"
	"landing/pkg/validation"
)

// Notifier delivers a single lead notification. Implementations make at most
// one delivery attempt and honour ctx cancellation.
type Notifier interface {
	Notify(ctx context.Context, lead *models.Lead) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, lead *models.Lead) error

func (f NotifierFunc) Notify(ctx context.Context, lead *models.Lead) error {
	return f(ctx, lead)
}

// LogNotifier writes the lead to the log instead of sending mail. Used when
// SMTP credentials are not configured (local development).
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, lead *models.Lead) error {
	n.logger.InfoContext(ctx, "new lead (mail disabled)",
		"lead_id", lead.ID,
		"phone", validation.MaskPhone(lead.Phone),
	)
	return nil
}
