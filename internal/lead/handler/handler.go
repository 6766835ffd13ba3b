package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landing/internal/lead/models"
	dErrors "landing/pkg/domain-errors"
	"landing/pkg/platform/httputil"
	"landing/pkg/requestcontext"
)

// Service defines the interface for lead capture.
type Service interface {
	Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResult, error)
}

// SubmitResponse is the success envelope for a captured lead.
type SubmitResponse struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	ID       string `json:"id"`
	Notified bool   `json:"notified"`
}

// Handler serves the lead capture API.
type Handler struct {
	leads  Service
	logger *slog.Logger
	limit  func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithRateLimit wraps the submit routes with mw.
func WithRateLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.limit = mw
	}
}

func New(leads Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{leads: leads, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts POST /leads and the legacy POST /api/contact alias.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.limit != nil {
			r.Use(h.limit)
		}
		r.Post("/leads", h.handleSubmit(models.SourceAPI))
		r.Post("/api/contact", h.handleSubmit(models.SourceLegacy))
	})
}

func (h *Handler) handleSubmit(source models.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)

		var req models.SubmitRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			h.logger.WarnContext(ctx, "invalid lead request",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
			return
		}
		req.Source = source

		res, err := h.leads.Submit(ctx, req)
		if err != nil {
			if !dErrors.HasCode(err, dErrors.CodeValidation) {
				h.logger.ErrorContext(ctx, "lead submission failed",
					"request_id", requestID,
					"error", err.Error(),
				)
			}
			httputil.WriteError(w, err)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, SubmitResponse{
			OK:       true,
			Message:  res.Message,
			ID:       res.Lead.ID.String(),
			Notified: res.Notified,
		})
	}
}
