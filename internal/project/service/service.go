package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"landing/internal/project/metrics"
	"landing/internal/project/models"
	dErrors "landing/pkg/domain-errors"
	"landing/pkg/platform/sentinel"
	"landing/pkg/requestcontext"
)

type ProjectStore interface {
	List(ctx context.Context) ([]*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) error
}

// Service serves the project listing and admin creation.
type Service struct {
	store   ProjectStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
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

func New(store ProjectStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("landing/project"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every project, newest first. A read failure yields no
// partial results.
func (s *Service) List(ctx context.Context) ([]*models.Project, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "project.List")
	defer span.End()
	defer s.observeList(start)

	projects, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list")
		s.logger.ErrorContext(ctx, "failed to list projects",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "Failed to fetch projects")
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	span.SetAttributes(attribute.Int("project.count", len(projects)))
	return projects, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Project, error) {
	ctx, span := s.tracer.Start(ctx, "project.Get", trace.WithAttributes(attribute.String("project.id", id)))
	defer span.End()

	p, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "get")
		s.logger.ErrorContext(ctx, "failed to load project",
			"project_id", id,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "Failed to fetch project")
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error) {
	ctx, span := s.tracer.Start(ctx, "project.Create")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, "validation")
		return nil, err
	}

	p, err := models.NewProject(req.Title, req.Location, *req.Price, req.Currency, req.Images, req.PDFURL, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, "Missing/invalid fields", dErrors.WithField(dErrors.FieldOf(err)))
		}
		return nil, err
	}

	if err := s.store.Create(ctx, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create")
		s.logger.ErrorContext(ctx, "failed to create project",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "Failed to create project")
	}
	span.SetAttributes(attribute.String("project.id", p.ID))
	s.logger.InfoContext(ctx, "project created",
		"project_id", p.ID,
		"admin", requestcontext.AdminSubject(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	return p, nil
}

func (s *Service) observeList(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveList(start)
	}
}
