// Package types contains common types used across the application
package types

// PersonaEntry represents one ranked persona row as read by API callers.
type PersonaEntry struct {
	Rank     int     `json:"rank"`
	Schema   string  `json:"schema"`
	Index    float64 `json:"index"`
	Emerging bool    `json:"emerging"`
}

// Profile is the computed read shape for one assessment.
type Profile struct {
	AssessmentID string         `json:"assessment_id"`
	Primary      *PersonaEntry  `json:"primary"`
	Secondary    *PersonaEntry  `json:"secondary"`
	Tertiary     *PersonaEntry  `json:"tertiary"`
	Personas     []PersonaEntry `json:"personas"`
}
