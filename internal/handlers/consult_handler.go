package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aidra-health/aidra/internal/assessment"
	"github.com/aidra-health/aidra/internal/facility"
	"github.com/aidra-health/aidra/internal/triage"
	"github.com/aidra-health/aidra/pkg/Logger"
	"github.com/aidra-health/aidra/pkg/assessor"
)

// ConsultHandler serves the text consultation endpoint. Each request is
// stateless; the client resends its rolling history, the stage is inferred
// from the assessed response when the backend does not label it.
type ConsultHandler struct {
	assessor   assessor.Assessor
	facilities *facility.Client
	classifier assessment.Classifier
	logger     *Logger.Logger
}

func NewConsultHandler(a assessor.Assessor, fc *facility.Client, logger *Logger.Logger) *ConsultHandler {
	return &ConsultHandler{
		assessor:   a,
		facilities: fc,
		classifier: assessment.KeywordClassifier{},
		logger:     logger,
	}
}

func (h *ConsultHandler) HandleConsult(c *gin.Context) {
	var req ConsultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	input := assessor.Input{
		Message:   req.Message,
		History:   toAssessorHistory(req.ConversationHistory),
		Language:  assessment.DetectLanguage(req.Message),
		ImageData: req.ImageData,
	}
	if req.UserLocation != nil {
		input.Location = &assessor.Location{
			Latitude:  req.UserLocation.Latitude,
			Longitude: req.UserLocation.Longitude,
		}
	}

	out, err := h.assessor.Assess(c.Request.Context(), input)
	if err != nil {
		var apiErr *triage.APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			h.logger.Warnf("assessment rejected: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Assessment backend rejected the request"})
			return
		}
		h.logger.Errorf("assessment failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assessment service unavailable"})
		return
	}

	stage := h.resolveStage(out, req)

	resp := ConsultResponse{
		Response:        out.Response,
		BriefText:       out.BriefText,
		DetailedText:    out.DetailedText,
		Condition:       out.Condition,
		UrgencyLevel:    out.UrgencyLevel,
		Confidence:      out.Confidence,
		AssessmentStage: string(stage),
	}

	// A backend that received the location resolves referrals itself; the
	// local lookup fills in once the assessment is complete and the client
	// shared a location.
	switch {
	case len(out.Facilities) > 0:
		resp.Facilities = out.Facilities
	case stage == assessment.StageFinal && req.UserLocation != nil && h.facilities != nil:
		fs, err := h.facilities.FindNearby(c.Request.Context(), req.UserLocation.Latitude, req.UserLocation.Longitude, 0)
		if err != nil {
			h.logger.Warnf("facility lookup failed: %v", err)
		} else {
			resp.Facilities = fs
		}
	}

	c.JSON(http.StatusOK, resp)
}

// resolveStage prefers the backend's explicit stage label and falls back to
// keyword classification over the transcript plus the new exchange.
func (h *ConsultHandler) resolveStage(out *assessor.Output, req ConsultRequest) assessment.Stage {
	if s, ok := assessment.ParseStage(out.AssessmentStage); ok {
		return s
	}

	window := make([]assessment.Entry, 0, len(req.ConversationHistory)+2)
	for _, e := range req.ConversationHistory {
		window = append(window, assessment.Entry{
			Role:      assessment.Role(e.Role),
			Content:   e.Content,
			Timestamp: time.Now(),
		})
	}
	window = append(window,
		assessment.Entry{Role: assessment.RoleUser, Content: req.Message, Timestamp: time.Now()},
		assessment.Entry{Role: assessment.RoleAssistant, Content: out.Response, Timestamp: time.Now()},
	)
	return h.classifier.Classify(window)
}

// HandleFacilities serves direct nearby-facility lookups.
func (h *ConsultHandler) HandleFacilities(c *gin.Context) {
	if h.facilities == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Facility lookup not configured"})
		return
	}

	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}
	radius, _ := strconv.ParseFloat(c.Query("radius_km"), 64)

	fs, err := h.facilities.FindNearby(c.Request.Context(), lat, lng, radius)
	if err != nil {
		h.logger.Errorf("facility lookup failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Facility service unavailable"})
		return
	}

	c.JSON(http.StatusOK, FacilityResponse{Facilities: fs, Count: len(fs)})
}

func toAssessorHistory(history []triage.HistoryEntry) []assessor.Message {
	msgs := make([]assessor.Message, 0, len(history))
	for _, e := range history {
		msgs = append(msgs, assessor.Message{Role: assessor.Role(e.Role), Content: e.Content})
	}
	return msgs
}
