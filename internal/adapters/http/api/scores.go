// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/scoring"
)

// ScoresDependencies defines the interface for score reads.
type ScoresDependencies interface {
	Scores(ctx context.Context, assessmentID string) ([]scoring.SchemaScore, error)
}

// ScoresHandler handles per-schema score requests.
type ScoresHandler struct {
	deps ScoresDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoresDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandleGetScores handles GET /assessments/{assessment_id}/scores.
func (h *ScoresHandler) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_scores"
	assessmentID := strings.TrimSpace(r.PathValue("assessment_id"))
	if assessmentID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, ErrBadRequest))
		return
	}
	scores, err := h.deps.Scores(r.Context(), assessmentID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, scores)
}
