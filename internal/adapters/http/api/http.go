// Package api serves the read-only HTTP view of the latest estimation run.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/ratefit/internal/adapters/repository"
	"github.com/okian/ratefit/internal/domain/model"
	"github.com/okian/ratefit/internal/domain/types"
)

// DefaultMaxLimit bounds /leaderboard when no limit is configured.
const DefaultMaxLimit = 1000

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Dependencies required by HTTP handlers.
type Dependencies interface {
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, contestant string) (Entry, error)
	Models(ctx context.Context) (model.Models, error)
	Model(ctx context.Context, problemID string) (model.ProblemModel, error)
	Stats(ctx context.Context) types.Stats
}

// Server wires HTTP routes for the read API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	ratingHandler      *RatingHandler
	modelsHandler      *ModelsHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// leaderboard page size.
func NewServer(deps Dependencies, maxLimit int) *Server {
	if maxLimit < 1 {
		maxLimit = DefaultMaxLimit
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		ratingHandler:      NewRatingHandler(deps),
		modelsHandler:      NewModelsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /rating/{contestant}", MetricsMiddleware(s.ratingHandler.HandleGetRating, "rating"))
	mux.HandleFunc("GET /models", MetricsMiddleware(s.modelsHandler.HandleGetModels, "models"))
	mux.HandleFunc("GET /models/{problem}", MetricsMiddleware(s.modelsHandler.HandleGetModel, "model"))
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeLookupError maps store errors to 404 or 500.
func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
