package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"landing/internal/lead/metrics"
	"landing/internal/lead/models"
	dErrors "landing/pkg/domain-errors"
	"landing/pkg/requestcontext"
	"landing/pkg/validation"
)

type LeadStore interface {
	Append(ctx context.Context, lead *models.Lead) error
}

type Notifier interface {
	Notify(ctx context.Context, lead *models.Lead) error
}

type NotificationQueue interface {
	Enqueue(lead *models.Lead) bool
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.CapturedEvent) error
}

// NotifyMode mirrors config.NotifyMode without importing platform config.
type NotifyMode string

const (
	NotifySync  NotifyMode = "sync"
	NotifyAsync NotifyMode = "async"
	NotifyOff   NotifyMode = "off"
)

const (
	msgNotified = "Thanks! We received your details and will be in touch soon."
	msgReceived = "Thanks! We received your details."
)

// Service runs the submit-lead flow: validate, persist, notify, publish.
type Service struct {
	store     LeadStore
	notifier  Notifier
	queue     NotificationQueue
	mode      NotifyMode
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithSyncNotifier awaits n inside Submit.
func WithSyncNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
		s.mode = NotifySync
	}
}

// WithQueue hands notifications to q and returns without waiting.
func WithQueue(q NotificationQueue) Option {
	return func(s *Service) {
		s.queue = q
		s.mode = NotifyAsync
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// New constructs a Service. Without a notifier option, notification is off.
func New(store LeadStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		mode:   NotifyOff,
		logger: slog.Default(),
		tracer: otel.Tracer("landing/lead"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates, persists and announces a lead.
//
// A lead is only reported as captured once the store accepted it. A failed
// owner notification never undoes that: the result carries Notified=false.
func (s *Service) Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "lead.Submit")
	defer span.End()
	defer s.observeSubmit(start)

	req.Normalize()
	span.SetAttributes(attribute.String("lead.source", string(req.Source)))

	if err := req.Validate(); err != nil {
		field := dErrors.FieldOf(err)
		s.incrementValidationFailure(field)
		span.SetStatus(codes.Error, "validation")
		s.logger.InfoContext(ctx, "lead rejected",
			"field", field,
			"source", req.Source,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	lead, err := models.NewLead(uuid.New(), req.Phone, req.Email, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error(), dErrors.WithField(dErrors.FieldOf(err)))
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("lead.id", lead.ID.String()))

	if err := s.store.Append(ctx, lead); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist")
		s.logger.ErrorContext(ctx, "failed to persist lead",
			"lead_id", lead.ID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to save lead")
	}
	s.incrementCaptured(req.Source)
	s.logger.InfoContext(ctx, "lead captured",
		"lead_id", lead.ID,
		"phone", validation.MaskPhone(lead.Phone),
		"source", req.Source,
		"client_ip", requestcontext.ClientIP(ctx),
		"device", requestcontext.Device(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)

	result := &models.SubmitResult{Lead: lead, Message: msgReceived}
	switch s.mode {
	case NotifySync:
		result.Notified = s.notifySync(ctx, span, lead)
	case NotifyAsync:
		result.Queued = s.queue.Enqueue(lead)
	}
	if result.Notified || result.Queued {
		result.Message = msgNotified
	}

	s.publish(ctx, lead, req.Source)
	return result, nil
}

func (s *Service) notifySync(ctx context.Context, span trace.Span, lead *models.Lead) bool {
	if err := s.notifier.Notify(ctx, lead); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("lead.notified", false))
		s.incrementNotificationFailed()
		s.logger.ErrorContext(ctx, "lead notification failed",
			"lead_id", lead.ID,
			"request_id", requestcontext.RequestID(ctx),
			"error", dErrors.Wrap(err, dErrors.CodeNotification, "failed to notify owner"),
		)
		return false
	}
	span.SetAttributes(attribute.Bool("lead.notified", true))
	s.incrementNotificationSent()
	return true
}

// publish is best-effort. Downstream consumers can reconcile from the store.
func (s *Service) publish(ctx context.Context, lead *models.Lead, source models.Source) {
	if s.publisher == nil {
		return
	}
	event := models.CapturedEvent{
		LeadID:     lead.ID,
		Phone:      lead.Phone,
		Email:      lead.Email,
		Source:     source,
		CapturedAt: lead.CreatedAt,
		RequestID:  requestcontext.RequestID(ctx),
		Device:     requestcontext.Device(ctx),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementEventPublishFailed()
		}
		s.logger.WarnContext(ctx, "failed to publish lead event",
			"lead_id", lead.ID,
			"error", err,
		)
	}
}

func (s *Service) observeSubmit(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSubmit(start)
	}
}

func (s *Service) incrementCaptured(source models.Source) {
	if s.metrics != nil {
		s.metrics.IncrementCaptured(string(source))
	}
}

func (s *Service) incrementValidationFailure(field string) {
	if s.metrics != nil {
		s.metrics.IncrementValidationFailure(field)
	}
}

func (s *Service) incrementNotificationSent() {
	if s.metrics != nil {
		s.metrics.IncrementNotificationSent()
	}
}

func (s *Service) incrementNotificationFailed() {
	if s.metrics != nil {
		s.metrics.IncrementNotificationFailed()
	}
}
