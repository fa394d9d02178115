package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
	"github.com/recifesafe/floodrisk-etl/internal/store"
)

const defaultListLimit = 1000

// ResultsStore serves converted neighborhood days to the query endpoints.
type ResultsStore interface {
	Ping(ctx context.Context) error
	ListDays(ctx context.Context, filter store.ListFilter) ([]domain.NeighborhoodDay, error)
	Ranking(ctx context.Context) ([]store.RankingEntry, error)
}

// Server exposes health, metrics, and result query HTTP endpoints.
type Server struct {
	httpServer *http.Server
	results    ResultsStore
	logger     *slog.Logger
}

// NewServer creates an HTTP server with health, metrics, and query routes.
func NewServer(addr string, results ResultsStore, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		results: results,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/neighborhood-days", s.handleListDays)
	mux.HandleFunc("GET /v1/ranking", s.handleRanking)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.results.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type dayResponse struct {
	NeighborhoodID string  `json:"neighborhood_id"`
	Date           string  `json:"date"`
	RainfallMM     float64 `json:"rainfall_mm"`
	TideM          float64 `json:"tide_m"`
	Vulnerability  float64 `json:"vulnerability"`
	Occurrences    int     `json:"occurrence_count"`
	RiskScore      float64 `json:"risk_score"`
}

func (s *Server) handleListDays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ListFilter{
		NeighborhoodID: q.Get("neighborhood"),
		Limit:          defaultListLimit,
	}

	var err error
	if v := q.Get("from"); v != "" {
		if filter.From, err = time.ParseInLocation("2006-01-02", v, time.UTC); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from must be YYYY-MM-DD"})
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if filter.To, err = time.ParseInLocation("2006-01-02", v, time.UTC); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to must be YYYY-MM-DD"})
			return
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		filter.Limit = n
	}

	days, err := s.results.ListDays(r.Context(), filter)
	if err != nil {
		s.logger.Error("list days failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
		return
	}

	out := make([]dayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, dayResponse{
			NeighborhoodID: d.NeighborhoodID,
			Date:           d.Date.Format("2006-01-02"),
			RainfallMM:     d.RainfallMM,
			TideM:          d.TideM,
			Vulnerability:  d.Vulnerability,
			Occurrences:    d.Occurrences,
			RiskScore:      d.RiskScore,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": out})
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := s.results.Ranking(r.Context())
	if err != nil {
		s.logger.Error("ranking failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
		return
	}
	if ranking == nil {
		ranking = []store.RankingEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ranking": ranking})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
