package triage

import (
	"fmt"

	"github.com/aidra-health/aidra/internal/facility"
)

// HistoryEntry is one turn of the rolling conversation history.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Location is the user's coordinate for facility referral.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AssessmentRequest is the wire request to the medical-assessment backend.
// History is bounded to the last 10 entries before sending.
type AssessmentRequest struct {
	Message             string         `json:"message"`
	ConversationHistory []HistoryEntry `json:"conversation_history"`
	UserLocation        *Location      `json:"user_location,omitempty"`
	Language            string         `json:"language,omitempty"`
	ImageData           string         `json:"image_data,omitempty"`
}

// AssessmentResponse is the backend's structured triage output.
type AssessmentResponse struct {
	Response        string              `json:"response"`
	BriefText       string              `json:"brief_text"`
	DetailedText    string              `json:"detailed_text"`
	Condition       string              `json:"condition,omitempty"`
	UrgencyLevel    string              `json:"urgency_level"`
	Confidence      float64             `json:"confidence"`
	HospitalData    []facility.Facility `json:"hospital_data,omitempty"`
	AssessmentStage string              `json:"assessment_stage,omitempty"`
}

// APIError distinguishes client errors from retryable server/network
// failures. 4xx responses fail immediately; 5xx and transport errors are
// candidates for caller-level retry.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("triage: backend returned status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the caller may retry the request.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}
