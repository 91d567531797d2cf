// Package api serves the typicality model as JSON.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"liftcast/app"
	"liftcast/domain/core"
	"liftcast/domain/typicality"
	"liftcast/internal"
	"liftcast/internal/errors"
	"liftcast/internal/observability"
)

// Handler routes the JSON API
type Handler struct {
	router  *chi.Mux
	model   *app.ModelService
	metrics *observability.Metrics
	logger  *internal.Logger
}

// TableResponse is the full model as served by GET /api/table
type TableResponse struct {
	SnapshotID   core.SnapshotID            `json:"snapshot_id"`
	Source       string                     `json:"source"`
	BuiltAt      time.Time                  `json:"built_at"`
	Fingerprint  core.Hash                  `json:"fingerprint"`
	Observations int                        `json:"observations"`
	Records      []typicality.SummaryRecord `json:"records"`
	Gaps         []typicality.Key           `json:"gaps"`
}

// RefreshResponse reports a freshly published snapshot
type RefreshResponse struct {
	SnapshotID  core.SnapshotID `json:"snapshot_id"`
	Source      string          `json:"source"`
	BuiltAt     time.Time       `json:"built_at"`
	Fingerprint core.Hash       `json:"fingerprint"`
	Slots       int             `json:"slots"`
	Gaps        int             `json:"gaps"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewHandler creates the API router. With non-nil metrics every request is
// counted and GET /metrics serves the registry.
func NewHandler(model *app.ModelService, metrics *observability.Metrics, logger *internal.Logger) *Handler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	h := &Handler{
		router:  chi.NewRouter(),
		model:   model,
		metrics: metrics,
		logger:  logger.With("API"),
	}
	h.setupMiddleware()
	h.setupRoutes()
	return h
}

func (h *Handler) setupMiddleware() {
	h.router.Use(middleware.RequestID)
	h.router.Use(middleware.Recoverer)
	h.router.Use(h.requestLogger)
}

func (h *Handler) setupRoutes() {
	h.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, errors.NotFound("route "+r.URL.Path))
	})

	h.router.Get("/healthz", h.handleHealth)
	if h.metrics != nil {
		h.router.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	h.router.Route("/api", func(r chi.Router) {
		r.Get("/predict", h.handlePredict)
		r.Get("/table", h.handleTable)
		r.Get("/summary", h.handleSummary)
		r.Get("/bucket", h.handleBucket)
		r.Post("/refresh", h.handleRefresh)
	})
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		h.metrics.ObserveRequest(route, ww.Status(), time.Since(start))
		h.logger.Debug("%s %s -> %d (%v) [%s]", r.Method, r.URL.RequestURI(), ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{"status": "ok"}
	if snap, ok := h.model.Current(); ok {
		body["snapshot_id"] = snap.ID
		body["built_at"] = snap.BuiltAt
	} else {
		body["status"] = "warming"
	}
	writeJSON(w, http.StatusOK, body)
}

// handlePredict answers GET /api/predict?hour=H&minute=M. A missing
// parameter takes the current wall-clock value.
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	now := h.model.Now()

	hour, err := intParam(r, "hour", now.Hour())
	if err != nil {
		h.writeError(w, err)
		return
	}
	minute, err := intParam(r, "minute", now.Minute())
	if err != nil {
		h.writeError(w, err)
		return
	}

	pred, err := h.model.Predict(r.Context(), hour, minute)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

func (h *Handler) handleTable(w http.ResponseWriter, r *http.Request) {
	snap, err := h.model.Model(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	records := snap.Table.Records()
	gaps := snap.Table.Gaps()
	if gaps == nil {
		gaps = []typicality.Key{}
	}
	writeJSON(w, http.StatusOK, TableResponse{
		SnapshotID:   snap.ID,
		Source:       snap.Source,
		BuiltAt:      snap.BuiltAt,
		Fingerprint:  snap.Table.Fingerprint(),
		Observations: snap.Table.Observations(),
		Records:      records,
		Gaps:         gaps,
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.model.Summary(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleBucket(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("minute"))
	if raw == "" {
		h.writeError(w, errors.InvalidInput("minute is required"))
		return
	}
	minute, err := intParam(r, "minute", 0)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"minute": minute,
		"bucket": typicality.Bucketize(minute),
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.model.Refresh(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshResponse{
		SnapshotID:  snap.ID,
		Source:      snap.Source,
		BuiltAt:     snap.BuiltAt,
		Fingerprint: snap.Table.Fingerprint(),
		Slots:       snap.Table.Len(),
		Gaps:        len(snap.Table.Gaps()),
	})
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidInput(name + " must be an integer, got " + strconv.Quote(raw))
	}
	return v, nil
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code string) int {
	switch code {
	case errors.CodeMissingKey, errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInput, errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeMalformedInput:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := errors.CodeFor(err)
	status := StatusFor(code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
