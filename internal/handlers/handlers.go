package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/swelljoe/wthr-screen/internal/screen"
	"github.com/swelljoe/wthr-screen/internal/weather"
)

//go:embed templates/*.html
var templateFS embed.FS

// Database defines the interface for database operations needed by handlers
type Database interface {
	PingContext(ctx context.Context) error
}

// Screen is the subset of *screen.Screen the HTTP surface drives
type Screen interface {
	View() screen.View
	SearchTextChanged(value string)
	SelectLocation(ctx context.Context, loc weather.Location) error
	ToggleSearch()
	Retry(ctx context.Context) error
}

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	db        Database
	screen    Screen
	metrics   http.Handler
	templates *template.Template
	logger    *slog.Logger
}

// New creates a new Handlers instance. database and metricsHandler may be nil.
func New(database Database, s Screen, metricsHandler http.Handler, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}

	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		// A Caser is stateful, so each call gets its own.
		"title": func(s string) string { return cases.Title(language.English).String(s) },
	}).ParseFS(templateFS, "templates/*.html"))

	return &Handlers{
		db:        database,
		screen:    s,
		metrics:   metricsHandler,
		templates: tmpl,
		logger:    logger.With("component", "http"),
	}
}

// Router builds the chi router with middleware and all routes.
func (h *Handlers) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", h.HandleIndex)
	r.Get("/health", h.HandleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/screen", h.HandleScreen)
		r.Post("/search", h.HandleSearch)
		r.Post("/toggle", h.HandleToggle)
		r.Post("/select", h.HandleSelect)
		r.Post("/retry", h.HandleRetry)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// isForm reports whether the request came from an HTML form, in which case
// the response is a redirect back to the page instead of JSON.
func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}

func (h *Handlers) respondView(w http.ResponseWriter, r *http.Request, status int) {
	if isForm(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, status, h.screen.View())
}

// HandleIndex renders the screen
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "index.html", h.screen.View()); err != nil {
		h.logger.Error("failed to execute template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HandleHealth handles health check endpoint
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			h.logger.Warn("database ping failed", "error", err)
			status = "degraded"
		}
	} else {
		status = "no_database"
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// HandleScreen returns the current view as JSON
func (h *Handlers) HandleScreen(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.screen.View())
}

type searchRequest struct {
	Q string `json:"q"`
}

// HandleSearch forwards typed text to the screen's debounced search
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if isForm(r) {
		req.Q = r.FormValue("q")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.screen.SearchTextChanged(req.Q)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// HandleToggle shows or hides the search box
func (h *Handlers) HandleToggle(w http.ResponseWriter, r *http.Request) {
	h.screen.ToggleSearch()
	h.respondView(w, r, http.StatusOK)
}

// HandleSelect switches the screen to the chosen candidate location
func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var loc weather.Location
	if isForm(r) {
		loc = weather.Location{
			Name:    r.FormValue("name"),
			Region:  r.FormValue("region"),
			Country: r.FormValue("country"),
		}
	} else if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	loc.Name = strings.TrimSpace(loc.Name)
	if loc.Name == "" {
		writeError(w, http.StatusBadRequest, "location name is required")
		return
	}

	h.finish(w, r, h.screen.SelectLocation(r.Context(), loc))
}

// HandleRetry re-requests the forecast after a failure
func (h *Handlers) HandleRetry(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, h.screen.Retry(r.Context()))
}

func (h *Handlers) finish(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
		h.respondView(w, r, http.StatusOK)
	case errors.Is(err, screen.ErrSuperseded):
		h.respondView(w, r, http.StatusConflict)
	case errors.Is(err, weather.ErrLocationNotFound):
		h.respondView(w, r, http.StatusNotFound)
	default:
		h.logger.Warn("forecast request failed", "error", err)
		h.respondView(w, r, http.StatusBadGateway)
	}
}
