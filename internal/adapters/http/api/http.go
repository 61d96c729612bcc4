// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/adapters/repository"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/model"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/normalize"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/scoring"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/types"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/export"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SeenAndRecord marks a submission token as seen and reports whether
	// it was already present. Unrecord rolls that back on rejection.
	SeenAndRecord(ctx context.Context, token string) bool
	Unrecord(ctx context.Context, token string)

	// StrictSubmissions reports whether invalid submissions are rejected
	// outright instead of being scored over whatever resolved.
	StrictSubmissions() bool

	// Normalize parses and resolves a raw payload against the instrument.
	Normalize(ctx context.Context, raw []byte) normalize.Result

	// Enqueue pushes a submission for async scoring. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, sub model.Submission) bool

	// Read operations expose scored assessment data.
	Scores(ctx context.Context, assessmentID string) ([]scoring.SchemaScore, error)
	Profile(ctx context.Context, assessmentID string) (types.Profile, error)
	Export(ctx context.Context, assessmentID string, participant model.Participant) (export.Document, error)
}

// Server wires HTTP routes for the assessment API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	submitHandler  *SubmitHandler
	scoresHandler  *ScoresHandler
	profileHandler *ProfileHandler
	exportHandler  *ExportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		submitHandler:  NewSubmitHandler(deps),
		scoresHandler:  NewScoresHandler(deps),
		profileHandler: NewProfileHandler(deps),
		exportHandler:  NewExportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /assessments/{assessment_id}/responses",
		MetricsMiddleware(s.submitHandler.HandleSubmit, "submit"))
	mux.HandleFunc("GET /assessments/{assessment_id}/scores",
		MetricsMiddleware(s.scoresHandler.HandleGetScores, "scores"))
	mux.HandleFunc("GET /assessments/{assessment_id}/profile",
		MetricsMiddleware(s.profileHandler.HandleGetProfile, "profile"))
	mux.HandleFunc("GET /assessments/{assessment_id}/export",
		MetricsMiddleware(s.exportHandler.HandleGetExport, "export"))
}

// ackResponse is the intake acknowledgement for POST responses.
type ackResponse struct {
	Status    string   `json:"status"`
	Duplicate bool     `json:"duplicate"`
	Mode      string   `json:"mode,omitempty"`
	Accepted  int      `json:"accepted,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
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

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
