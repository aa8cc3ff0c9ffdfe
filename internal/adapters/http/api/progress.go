package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/rampart/internal/auth"
	"github.com/okian/rampart/internal/domain/model"
)

// ProgressHandler serves the caller's progress record and accepts score
// submissions.
type ProgressHandler struct {
	deps Dependencies
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps Dependencies) *ProgressHandler {
	return &ProgressHandler{deps: deps}
}

// HandleProgress dispatches GET and POST /api/progress. The identity
// middleware runs first, so a missing identity here is a programming error
// surfaced as 401.
func (h *ProgressHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, id.UserID)
	case http.MethodPost:
		h.handleSubmit(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *ProgressHandler) handleGet(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "api.get_progress"
	rec, err := h.deps.Progress(r.Context(), userID)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, NewKind(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *ProgressHandler) handleSubmit(w http.ResponseWriter, r *http.Request, id model.Identity) {
	const op = "api.submit_score"
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	rec, _, err := h.deps.Submit(r.Context(), id, req.ModuleID, req.Score)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, NewKind(op, err))
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Success: true, Progress: rec})
}
