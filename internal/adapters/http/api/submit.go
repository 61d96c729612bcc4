// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/pkg/metrics"
)

// maxSubmissionBody bounds the accepted payload size. A full instrument
// submission with generous timestamps stays well under this.
const maxSubmissionBody = 1 << 20

// SubmitHandler handles submission intake requests.
type SubmitHandler struct {
	deps Dependencies
}

// NewSubmitHandler creates a new submit handler.
func NewSubmitHandler(deps Dependencies) *SubmitHandler {
	return &SubmitHandler{deps: deps}
}

// HandleSubmit handles POST /assessments/{assessment_id}/responses.
// The body is either an array of response objects or a map of identifier
// keys to Likert values. An optional Idempotency-Key header dedupes
// retried submissions.
func (h *SubmitHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	assessmentID := strings.TrimSpace(r.PathValue("assessment_id"))
	if assessmentID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, ErrBadRequest))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSubmissionBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check. Mark as seen first so concurrent retries collapse.
	token := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if token != "" && h.deps.SeenAndRecord(r.Context(), token) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	res := h.deps.Normalize(r.Context(), body)
	rejected := (!res.OK && h.deps.StrictSubmissions()) || len(res.Responses) == 0
	if rejected {
		if token != "" {
			h.deps.Unrecord(r.Context(), token)
		}
		metrics.RecordSubmissionRejected()
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    "unprocessable",
			Message: ErrUnprocessable.Error(),
			Details: res.Errors,
		})
		return
	}

	sub := model.Submission{
		SubmissionID: token,
		AssessmentID: assessmentID,
		Responses:    res.Responses,
	}
	if ok := h.deps.Enqueue(r.Context(), sub); !ok {
		// Roll back the seen status so the client can retry.
		if token != "" {
			h.deps.Unrecord(r.Context(), token)
		}
		writeError(w, http.StatusTooManyRequests, "backpressure", Wrap(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{
		Status:   "accepted",
		Mode:     string(res.Mode),
		Accepted: len(res.Responses),
		Errors:   res.Errors,
	})
}
