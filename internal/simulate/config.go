package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Assessments int           // Number of synthetic assessments to submit
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Verbose     bool          // Enable verbose logging
}

// ResponseEntry mirrors the array payload shape accepted by the intake API.
type ResponseEntry struct {
	ItemID      string `json:"itemId,omitempty"`
	CanonicalID string `json:"canonicalId,omitempty"`
	Value       int    `json:"value"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// ackResponse mirrors the intake acknowledgement.
type ackResponse struct {
	Status    string   `json:"status"`
	Duplicate bool     `json:"duplicate"`
	Mode      string   `json:"mode"`
	Accepted  int      `json:"accepted"`
	Errors    []string `json:"errors"`
}

// profileResponse mirrors the persona profile read shape.
type profileResponse struct {
	AssessmentID string `json:"assessment_id"`
	Primary      *struct {
		Rank     int     `json:"rank"`
		Schema   string  `json:"schema"`
		Index    float64 `json:"index"`
		Emerging bool    `json:"emerging"`
	} `json:"primary"`
}
