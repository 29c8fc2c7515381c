package api

import (
	"context"
	"net/http"
	"strings"
)

// RatingDependencies defines the interface for contestant lookups.
type RatingDependencies interface {
	Rank(ctx context.Context, contestant string) (Entry, error)
}

// RatingHandler handles per-contestant rating requests.
type RatingHandler struct {
	deps RatingDependencies
}

// NewRatingHandler creates a new rating handler.
func NewRatingHandler(deps RatingDependencies) *RatingHandler {
	return &RatingHandler{deps: deps}
}

// HandleGetRating handles GET /rating/{contestant} requests.
func (h *RatingHandler) HandleGetRating(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rating"
	contestant := strings.TrimSpace(r.PathValue("contestant"))
	if contestant == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	entry, err := h.deps.Rank(r.Context(), contestant)
	if err != nil {
		writeLookupError(w, wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
