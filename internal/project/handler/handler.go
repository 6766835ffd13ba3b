package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landing/internal/project/models"
	dErrors "landing/pkg/domain-errors"
	"landing/pkg/platform/httputil"
	"landing/pkg/requestcontext"
)

// Service defines the interface for project operations.
type Service interface {
	List(ctx context.Context) ([]*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error)
}

// Handler serves the project listing API.
type Handler struct {
	projects Service
	logger   *slog.Logger
	admin    func(http.Handler) http.Handler
}

// New creates a project Handler. admin guards the create routes; when nil,
// creation is not exposed over HTTP.
func New(projects Service, logger *slog.Logger, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{projects: projects, logger: logger, admin: admin}
}

// Register mounts the public listing routes, their /api aliases and, when an
// admin guard is configured, the create routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/projects", h.handleList)
	r.Get("/api/projects", h.handleList)
	r.Get("/projects/{id}", h.handleGet)
	r.Get("/api/projects/{id}", h.handleGet)

	if h.admin == nil {
		return
	}
	r.Group(func(r chi.Router) {
		r.Use(h.admin)
		r.Post("/projects", h.handleCreate)
		r.Post("/api/projects", h.handleCreate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, projects)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreateProjectRequest
	if err := httputil.DecodeJSONStrict(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid create project request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		// a non-numeric price or an unknown field fails decoding; report it like the other field errors
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "Missing/invalid fields"))
		return
	}

	p, err := h.projects.Create(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}
