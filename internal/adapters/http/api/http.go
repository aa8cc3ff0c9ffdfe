// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/rampart/internal/domain/model"
)

// Dependencies bundles what the handlers need from the service layer.
type Dependencies interface {
	// VerifyBearer turns an Authorization header value into a verified
	// identity.
	VerifyBearer(header string) (model.Identity, error)

	// Progress returns the user's record; empty for new users.
	Progress(ctx context.Context, userID string) (model.Record, error)

	// Submit merges a module completion and reports whether the best score
	// improved.
	Submit(ctx context.Context, id model.Identity, moduleID string, score int) (model.Record, bool, error)

	// Leaderboard returns the current top-N entries, sorted descending.
	Leaderboard(ctx context.Context) ([]model.Entry, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	progressHandler    *ProgressHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates the API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		progressHandler:    NewProgressHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
	}
}

// Register attaches all HTTP routes to mux. Identity-requiring routes run
// through the bearer middleware; everything gets request ids and metrics.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, deps Dependencies) {
	mux.HandleFunc("/healthz", RequestIDMiddleware(MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")))
	mux.HandleFunc("/stats", RequestIDMiddleware(MetricsMiddleware(s.statsHandler.HandleStats, "stats")))
	mux.HandleFunc("/api/progress", RequestIDMiddleware(MetricsMiddleware(
		RequireIdentity(deps, s.progressHandler.HandleProgress), "progress")))
	mux.HandleFunc("/api/leaderboard", RequestIDMiddleware(MetricsMiddleware(
		s.leaderboardHandler.HandleGetLeaderboard, "leaderboard")))
}

// submitRequest mirrors the POST /api/progress body.
type submitRequest struct {
	ModuleID string `json:"module_id"`
	Score    int    `json:"score"`
}

// submitResponse echoes the merged record after a submission.
type submitResponse struct {
	Success  bool         `json:"success"`
	Progress model.Record `json:"progress"`
}

// leaderboardEntry is the public read shape of a table row.
type leaderboardEntry struct {
	Name        string    `json:"name"`
	TotalScore  int       `json:"total_score"`
	LastUpdated time.Time `json:"last_updated"`
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
