package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aidra-health/aidra/pkg/Logger"
	"github.com/aidra-health/aidra/pkg/assessor"
)

// historyLimit bounds the rolling history sent with each request.
const historyLimit = 10

// Client talks to the hosted medical-assessment backend. It performs no
// automatic retries; retry policy belongs to the calling layer.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *Logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *Logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Assess posts a message plus rolling history and returns the structured
// triage output.
func (c *Client) Assess(ctx context.Context, req AssessmentRequest) (*AssessmentResponse, error) {
	if len(req.ConversationHistory) > historyLimit {
		req.ConversationHistory = req.ConversationHistory[len(req.ConversationHistory)-historyLimit:]
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("triage: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/multimodal-assessment", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("triage: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Network failures carry no status; callers treat them as retryable.
		return nil, &APIError{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: 0, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Errorf("assessment backend error (status %d): %s", resp.StatusCode, string(body))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var out AssessmentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("triage: decode response: %w", err)
	}
	return &out, nil
}

// Assessor adapts the client to the assessor.Assessor interface so the
// backend is selectable next to the direct model adapters.
type Assessor struct {
	client *Client
}

func NewAssessor(client *Client) *Assessor {
	return &Assessor{client: client}
}

func (a *Assessor) Assess(ctx context.Context, input assessor.Input) (*assessor.Output, error) {
	history := make([]HistoryEntry, 0, len(input.History))
	for _, msg := range input.History {
		history = append(history, HistoryEntry{Role: string(msg.Role), Content: msg.Content})
	}

	var loc *Location
	if input.Location != nil {
		loc = &Location{Latitude: input.Location.Latitude, Longitude: input.Location.Longitude}
	}

	resp, err := a.client.Assess(ctx, AssessmentRequest{
		Message:             input.Message,
		ConversationHistory: history,
		UserLocation:        loc,
		Language:            input.Language,
		ImageData:           input.ImageData,
	})
	if err != nil {
		return nil, err
	}

	return &assessor.Output{
		Response:        resp.Response,
		BriefText:       resp.BriefText,
		DetailedText:    resp.DetailedText,
		Condition:       resp.Condition,
		UrgencyLevel:    resp.UrgencyLevel,
		Confidence:      resp.Confidence,
		AssessmentStage: resp.AssessmentStage,
		Facilities:      resp.HospitalData,
		GeneratedAt:     time.Now(),
	}, nil
}
