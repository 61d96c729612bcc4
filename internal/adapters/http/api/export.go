// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/export"
)

// ExportDependencies defines the interface for export document builds.
type ExportDependencies interface {
	Export(ctx context.Context, assessmentID string, participant model.Participant) (export.Document, error)
}

// ExportHandler handles export document requests.
type ExportHandler struct {
	deps ExportDependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps ExportDependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleGetExport handles GET /assessments/{assessment_id}/export.
// Optional name and email query parameters populate the participant block.
func (h *ExportHandler) HandleGetExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_export"
	assessmentID := strings.TrimSpace(r.PathValue("assessment_id"))
	if assessmentID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, ErrBadRequest))
		return
	}
	participant := model.Participant{
		Name:         strings.TrimSpace(r.URL.Query().Get("name")),
		Email:        strings.TrimSpace(r.URL.Query().Get("email")),
		AssessmentID: assessmentID,
	}
	doc, err := h.deps.Export(r.Context(), assessmentID, participant)
	if err != nil {
		switch {
		case isNotFound(err):
			writeError(w, http.StatusNotFound, "not_found", err)
		case errors.Is(err, export.ErrExportValidation):
			writeError(w, http.StatusUnprocessableEntity, "export_invalid", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
