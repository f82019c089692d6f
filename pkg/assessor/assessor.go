// Package assessor abstracts the medical-assessment backend. Adapters cover
// the hosted HTTP backend and direct model providers.
package assessor

import (
	"context"
	"time"

	"github.com/aidra-health/aidra/internal/facility"
)

type Role string

const (
	USER      Role = "user"
	ASSISTANT Role = "assistant"
	SYSTEM    Role = "system"
)

// Message is one turn of the rolling conversation history sent with each
// assessment request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Urgency classes reported with a triage output.
const (
	UrgencyLow      = "low"
	UrgencyModerate = "moderate"
	UrgencyHigh     = "high"
)

// Output is the structured triage result. Facilities is only populated by
// backends that resolve referrals themselves; the handler falls back to a
// local lookup when it is empty.
type Output struct {
	Response        string              `json:"response"`
	BriefText       string              `json:"brief_text"`
	DetailedText    string              `json:"detailed_text"`
	Condition       string              `json:"condition,omitempty"`
	UrgencyLevel    string              `json:"urgency_level"`
	Confidence      float64             `json:"confidence"`
	AssessmentStage string              `json:"assessment_stage,omitempty"`
	Facilities      []facility.Facility `json:"hospital_data,omitempty"`
	GeneratedAt     time.Time           `json:"generated_at"`
}

// Location is the user's coordinate, forwarded so the backend can resolve
// nearby facilities itself.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Input carries the user's message plus the bounded history window.
type Input struct {
	Message   string
	History   []Message
	Location  *Location
	Language  string // detected input language code, e.g. "ko"
	ImageData string // optional base64 photo of the injury
}

// Assessor turns a message and history into structured triage output.
type Assessor interface {
	Assess(ctx context.Context, input Input) (*Output, error)
}
