package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/ratefit/internal/domain/model"
)

// ModelsDependencies reads the merged model document.
type ModelsDependencies interface {
	Models(ctx context.Context) (model.Models, error)
	Model(ctx context.Context, problemID string) (model.ProblemModel, error)
}

// ModelsHandler serves problem models.
type ModelsHandler struct {
	deps ModelsDependencies
}

// NewModelsHandler creates a new models handler.
func NewModelsHandler(deps ModelsDependencies) *ModelsHandler {
	return &ModelsHandler{deps: deps}
}

// HandleGetModels handles GET /models, returning the whole document.
func (h *ModelsHandler) HandleGetModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.deps.Models(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", wrap("api.get_models", err))
		return
	}
	writeJSON(w, http.StatusOK, models)
}

// HandleGetModel handles GET /models/{problem}.
func (h *ModelsHandler) HandleGetModel(w http.ResponseWriter, r *http.Request) {
	problem := strings.TrimSpace(r.PathValue("problem"))
	if problem == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	m, err := h.deps.Model(r.Context(), problem)
	if err != nil {
		writeLookupError(w, wrap("api.get_model", err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}
