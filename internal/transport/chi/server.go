// Package chi holds the HTTP handlers for the search API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/HeetShah3114/21BCE2938-ML/internal/domain"
	searchuc "github.com/HeetShah3114/21BCE2938-ML/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server implements the HTTP API surface.
type Server struct {
	search        *searchuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUserIDRequired, http.StatusBadRequest),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway),
		backendErrorHandler,
	}
	return s
}

// Register mounts the API routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Post("/search", s.Search)
	r.Get("/metrics", s.Metrics)
}

type searchRequest struct {
	UserID    string   `json:"user_id"`
	Text      string   `json:"text"`
	TopK      *int     `json:"top_k"`
	Threshold *float64 `json:"threshold"`
}

// searchResponse is the cache-miss shape: results plus timing.
type searchResponse struct {
	Results       []domain.SearchResult `json:"results"`
	InferenceTime float64               `json:"inference_time"`
}

// cachedSearchResponse is the cache-hit shape: the stored serialized list
// verbatim, no timing field.
type cachedSearchResponse struct {
	Results string `json:"results"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "API is active"})
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	domReq := domain.SearchRequest{
		UserID:    req.UserID,
		Text:      req.Text,
		TopK:      domain.DefaultTopK,
		Threshold: domain.DefaultThreshold,
	}
	// Defaults apply only when the field is absent from the body.
	if req.TopK != nil {
		domReq.TopK = *req.TopK
	}
	if req.Threshold != nil {
		domReq.Threshold = *req.Threshold
	}

	resp, err := s.search.Search(r.Context(), domReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if resp.CacheHit {
		writeJSON(w, http.StatusOK, cachedSearchResponse{Results: resp.Cached})
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results:       resp.Results,
		InferenceTime: resp.InferenceTime,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// sentinelHandler returns an errorHandler matching a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, sentinel.Error())
		return true
	}
}

// backendErrorHandler surfaces the store's own message on a search backend
// failure, per the API contract.
func backendErrorHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrSearchBackend) {
		return false
	}
	var be *domain.BackendError
	if errors.As(err, &be) {
		writeError(w, http.StatusInternalServerError, be.Error())
		return true
	}
	writeError(w, http.StatusInternalServerError, domain.ErrSearchBackend.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("search error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}
