package handlers

import (
	"github.com/aidra-health/aidra/internal/facility"
	"github.com/aidra-health/aidra/internal/triage"
)

type TokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// ConsultRequest is the REST consultation payload. History carries the
// client's rolling transcript; location and image are optional.
type ConsultRequest struct {
	Message             string                `json:"message" binding:"required"`
	ConversationHistory []triage.HistoryEntry `json:"conversation_history"`
	UserLocation        *triage.Location      `json:"user_location,omitempty"`
	ImageData           string                `json:"image_data,omitempty"`
}

type ConsultResponse struct {
	Response        string              `json:"response"`
	BriefText       string              `json:"brief_text"`
	DetailedText    string              `json:"detailed_text"`
	Condition       string              `json:"condition,omitempty"`
	UrgencyLevel    string              `json:"urgency_level"`
	Confidence      float64             `json:"confidence"`
	AssessmentStage string              `json:"assessment_stage"`
	Facilities      []facility.Facility `json:"facilities,omitempty"`
}

type FacilityResponse struct {
	Facilities []facility.Facility `json:"facilities"`
	Count      int                 `json:"count"`
}
