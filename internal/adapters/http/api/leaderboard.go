package api

import "net/http"

// LeaderboardHandler serves the public ranking table.
type LeaderboardHandler struct {
	deps Dependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /api/leaderboard requests. The table is
// publicly readable; user ids stay internal, only display names go out.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	entries, err := h.deps.Leaderboard(r.Context())
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, NewKind(op, err))
		return
	}
	out := make([]leaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = leaderboardEntry{
			Name:        e.Name,
			TotalScore:  e.TotalScore,
			LastUpdated: e.LastUpdated,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
