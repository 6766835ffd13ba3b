// Package web renders the landing page server-side: the projects carousel,
// project detail view, contact form and accessibility toolbar. It talks to the
// same lead and project services as the JSON API.
package web

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	leadModels "landing/internal/lead/models"
	projectModels "landing/internal/project/models"
	"landing/internal/web/a11y"
	"landing/internal/web/contactform"
	dErrors "landing/pkg/domain-errors"
	"landing/pkg/requestcontext"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	defaultBrand = "W.B Real Estate Consulting"
	maxFormBytes = 16 << 10
)

type LeadService interface {
	Submit(ctx context.Context, req leadModels.SubmitRequest) (*leadModels.SubmitResult, error)
}

type ProjectService interface {
	List(ctx context.Context) ([]*projectModels.Project, error)
	Get(ctx context.Context, id string) (*projectModels.Project, error)
}

type Handler struct {
	leads    LeadService
	projects ProjectService
	logger   *slog.Logger
	limit    func(http.Handler) http.Handler
	brand    string
	secure   bool

	home    *template.Template
	project *template.Template
}

type Option func(*Handler)

// WithRateLimit wraps POST /contact with mw.
func WithRateLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.limit = mw
	}
}

// WithSecureCookies marks settings and flash cookies Secure (HTTPS only).
func WithSecureCookies(secure bool) Option {
	return func(h *Handler) {
		h.secure = secure
	}
}

func WithBrand(brand string) Option {
	return func(h *Handler) {
		if brand != "" {
			h.brand = brand
		}
	}
}

func New(leads LeadService, projects ProjectService, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		leads:    leads,
		projects: projects,
		logger:   logger,
		brand:    defaultBrand,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.home = parsePage("templates/home.html")
	h.project = parsePage("templates/project.html")
	return h
}

func parsePage(page string) *template.Template {
	return template.Must(template.New("layout").Funcs(template.FuncMap{
		"join":  strings.Join,
		"price": formatPrice,
	}).ParseFS(templateFS, "templates/layout.html", page))
}

// Register mounts the web routes.
func (h *Handler) Register(r chi.Router) {
	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	r.Get("/", h.handleHome)
	r.Get("/p/{id}", h.handleProject)
	r.Post("/a11y", h.handleA11y)
	r.Group(func(r chi.Router) {
		if h.limit != nil {
			r.Use(h.limit)
		}
		r.Post("/contact", h.handleContact)
	})
}

type toggleView struct {
	Key   string
	Label string
	On    bool
}

type pageData struct {
	Title    string
	Brand    string
	Year     int
	ReturnTo string
	A11y     a11y.Settings
	Toggles  []toggleView
	Listing  Listing
	Form     contactform.Snapshot
	Project  *projectModels.Project
	BackURL  string
}

func (h *Handler) newPage(r *http.Request, title string) pageData {
	settings := a11y.Load(r)
	return pageData{
		Title:    title,
		Brand:    h.brand,
		Year:     requestcontext.Now(r.Context()).Year(),
		ReturnTo: r.URL.RequestURI(),
		A11y:     settings,
		Toggles:  toggles(settings),
	}
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := contactform.New()
	if f, ok := popFlash(w, r); ok {
		form = contactform.Restore(f.State, f.Message, f.Focus, requestcontext.Now(ctx))
	}
	h.renderHome(w, r, http.StatusOK, form)
}

func (h *Handler) renderHome(w http.ResponseWriter, r *http.Request, status int, form *contactform.Form) {
	ctx := r.Context()
	projects, err := h.projects.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list projects for landing page",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}

	data := h.newPage(r, h.brand)
	data.ReturnTo = "/"
	data.Listing = NewListing(projects, err)
	data.Form = form.Snapshot()
	h.render(w, r, h.home, status, data)
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := requestcontext.Now(ctx)
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		form := contactform.New()
		form.Fail("", now)
		h.renderHome(w, r, http.StatusBadRequest, form)
		return
	}

	form := contactform.New()
	form.Edit(contactform.FieldPhone, r.PostForm.Get("phone"))
	form.Edit(contactform.FieldEmail, r.PostForm.Get("email"))
	if !form.Validate(now) {
		h.renderHome(w, r, http.StatusBadRequest, form)
		return
	}

	form.BeginSubmit()
	snap := form.Snapshot()
	res, err := h.leads.Submit(ctx, leadModels.SubmitRequest{
		Phone:  snap.Phone,
		Email:  snap.Email,
		Source: leadModels.SourceWeb,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeValidation {
			status = http.StatusBadRequest
			form.Reject(contactform.Field(de.Field), de.Message, now)
		} else if ok {
			form.Fail(de.Message, now)
		} else {
			form.Fail("", now)
		}
		h.renderHome(w, r, status, form)
		return
	}

	form.Succeed(res.Message, now)
	snap = form.Snapshot()
	setFlash(w, flash{State: snap.State, Message: snap.Message, Focus: snap.Focus}, h.secure)
	http.Redirect(w, r, "/#contact", http.StatusSeeOther)
}

func (h *Handler) handleProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	project, err := h.projects.Get(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			http.Error(w, "project not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to load project",
			"project_id", id,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		http.Error(w, "failed to load project", http.StatusInternalServerError)
		return
	}

	data := h.newPage(r, project.Title+" | "+h.brand)
	data.Project = project
	data.BackURL = "/#project-" + project.ID
	h.render(w, r, h.project, http.StatusOK, data)
}

func (h *Handler) handleA11y(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	settings := a11y.Load(r)
	action, key := r.PostForm.Get("action"), ""
	if toggle := r.PostForm.Get("toggle"); toggle != "" {
		action, key = "toggle", toggle
	}
	if updated, ok := settings.Apply(action, key); ok {
		a11y.Save(w, updated, h.secure)
	}
	http.Redirect(w, r, safeReturn(r.PostForm.Get("return")), http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data pageData) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// safeReturn only allows local paths so the toolbar cannot be used as an
// open redirect.
func safeReturn(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/"
	}
	return path
}

var toggleLabels = []struct{ key, label string }{
	{a11y.KeyHighContrast, "ניגודיות גבוהה"},
	{a11y.KeyHighlightLinks, "הדגשת קישורים"},
	{a11y.KeyTextSpacing, "ריווח טקסט"},
	{a11y.KeyHideImages, "הסתרת תמונות"},
	{a11y.KeyReduceMotion, "עצירת אנימציות"},
	{a11y.KeyBigCursor, "סמן גדול"},
	{a11y.KeyDyslexia, "תמיכה בדיסלקסיה"},
	{a11y.KeyDescriptions, "תיאורים"},
	{a11y.KeySaturate, "רוויה"},
	{a11y.KeyBigWidget, "יישומון גדול"},
}

func toggles(s a11y.Settings) []toggleView {
	views := make([]toggleView, 0, len(toggleLabels))
	for _, t := range toggleLabels {
		views = append(views, toggleView{Key: t.key, Label: t.label, On: s.Enabled(t.key)})
	}
	return views
}

// formatPrice renders 1250000 ILS as "₪1,250,000". A negative price keeps
// its sign ahead of the symbol.
func formatPrice(price int64, currency string) string {
	sign := ""
	abs := uint64(price)
	if price < 0 {
		sign = "-"
		abs = uint64(-price)
	}
	digits := strconv.FormatUint(abs, 10)
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	switch strings.ToUpper(currency) {
	case "ILS", "":
		return sign + "₪" + b.String()
	case "USD":
		return sign + "$" + b.String()
	case "EUR":
		return sign + "€" + b.String()
	default:
		return sign + b.String() + " " + currency
	}
}
