// Package httpapi is the thin HTTP layer. It delegates to the facts service
// and maps error kinds to status codes; no business logic lives here.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/edgar-facts/internal/facts"
	"github.com/sells-group/edgar-facts/internal/service"
)

// FactsService is the operation the API exposes.
type FactsService interface {
	GetCompanyFacts(ctx context.Context, identifier string, q service.Query) (*facts.CompanyFactsResponse, error)
}

// Handler serves the facts API.
type Handler struct {
	svc           FactsService
	defaultPeriod string
	defaultLimit  int
}

// NewHandler creates the API handler. Defaults apply when the request omits
// period/limit query parameters.
func NewHandler(svc FactsService, defaultPeriod string, defaultLimit int) *Handler {
	return &Handler{svc: svc, defaultPeriod: defaultPeriod, defaultLimit: defaultLimit}
}

// NewRouter wires all public endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", h.handleHealth)
	r.Get("/api/financial/{identifier}", h.handleCompanyFacts)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleCompanyFacts(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "identifier is required")
		return
	}

	q := service.Query{Granularity: h.defaultPeriod, Limit: h.defaultLimit}

	if p := r.URL.Query().Get("period"); p != "" {
		switch p {
		case "annual", "quarterly":
			q.Granularity = p
		default:
			writeError(w, http.StatusBadRequest, "period must be \"annual\" or \"quarterly\"")
			return
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		q.Limit = n
	}

	resp, err := h.svc.GetCompanyFacts(r.Context(), identifier, q)
	if err != nil {
		switch {
		case errors.Is(err, facts.ErrNotFound):
			writeError(w, http.StatusNotFound, "company not found: "+identifier)
		case errors.Is(err, facts.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, "filing data provider unavailable")
		default:
			zap.L().Error("company facts request failed",
				zap.String("identifier", identifier), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs each request with zap.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
