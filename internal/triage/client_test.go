package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aidra-health/aidra/internal/facility"
	"github.com/aidra-health/aidra/pkg/Logger"
	"github.com/aidra-health/aidra/pkg/assessor"
)

func TestAssessSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/multimodal-assessment" {
			t.Errorf("Expected assessment path, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}

		var req AssessmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Message != "I burned my hand" {
			t.Errorf("Expected message to reach the backend, got %q", req.Message)
		}

		json.NewEncoder(w).Encode(AssessmentResponse{
			Response:        "BRIEF: Cool the burn. DETAILED: Run cool water for 20 minutes.",
			BriefText:       "Cool the burn.",
			DetailedText:    "Run cool water for 20 minutes.",
			Condition:       "minor burn",
			UrgencyLevel:    "low",
			Confidence:      0.9,
			AssessmentStage: "clarification",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, Logger.Nop())
	resp, err := client.Assess(context.Background(), AssessmentRequest{Message: "I burned my hand"})
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}

	if resp.BriefText != "Cool the burn." {
		t.Errorf("Expected brief text, got %q", resp.BriefText)
	}
	if resp.Condition != "minor burn" {
		t.Errorf("Expected condition, got %q", resp.Condition)
	}
	if resp.AssessmentStage != "clarification" {
		t.Errorf("Expected stage passthrough, got %q", resp.AssessmentStage)
	}
}

func TestAssessHistoryTrimmed(t *testing.T) {
	var gotHistory int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req AssessmentRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotHistory = len(req.ConversationHistory)
		json.NewEncoder(w).Encode(AssessmentResponse{Response: "ok"})
	}))
	defer srv.Close()

	history := make([]HistoryEntry, 25)
	for i := range history {
		history[i] = HistoryEntry{Role: "user", Content: fmt.Sprintf("turn %d", i)}
	}

	client := NewClient(srv.URL, time.Second, Logger.Nop())
	if _, err := client.Assess(context.Background(), AssessmentRequest{
		Message:             "next",
		ConversationHistory: history,
	}); err != nil {
		t.Fatalf("Assess failed: %v", err)
	}

	if gotHistory != 10 {
		t.Errorf("Expected history trimmed to 10 entries, got %d", gotHistory)
	}
}

func TestAssessClientErrorNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad image payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, Logger.Nop())
	_, err := client.Assess(context.Background(), AssessmentRequest{Message: "hi"})
	if err == nil {
		t.Fatal("Expected an error for 400 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", apiErr.StatusCode)
	}
	if apiErr.Retryable() {
		t.Error("Expected 4xx to be non-retryable")
	}
}

func TestAssessServerErrorRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, Logger.Nop())
	_, err := client.Assess(context.Background(), AssessmentRequest{Message: "hi"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T", err)
	}
	if !apiErr.Retryable() {
		t.Error("Expected 5xx to be retryable")
	}
}

func TestAssessNetworkErrorRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force a connection failure

	client := NewClient(srv.URL, 100*time.Millisecond, Logger.Nop())
	_, err := client.Assess(context.Background(), AssessmentRequest{Message: "hi"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError for network failure, got %T", err)
	}
	if apiErr.StatusCode != 0 {
		t.Errorf("Expected status 0 for network failure, got %d", apiErr.StatusCode)
	}
	if !apiErr.Retryable() {
		t.Error("Expected network failure to be retryable")
	}
}

func TestAssessorAdapter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req AssessmentRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.ConversationHistory) != 2 {
			t.Errorf("Expected 2 history entries, got %d", len(req.ConversationHistory))
		}
		json.NewEncoder(w).Encode(AssessmentResponse{
			Response:     "rest and hydrate",
			UrgencyLevel: "low",
			Confidence:   0.8,
		})
	}))
	defer srv.Close()

	a := NewAssessor(NewClient(srv.URL, time.Second, Logger.Nop()))
	out, err := a.Assess(context.Background(), assessor.Input{
		Message: "I feel tired",
		History: []assessor.Message{
			{Role: assessor.USER, Content: "hello"},
			{Role: assessor.ASSISTANT, Content: "hi, what happened?"},
		},
	})
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if out.Response != "rest and hydrate" {
		t.Errorf("Expected response passthrough, got %q", out.Response)
	}
	if out.GeneratedAt.IsZero() {
		t.Error("Expected GeneratedAt to be stamped")
	}
}

func TestAssessorAdapterForwardsLocation(t *testing.T) {
	var got AssessmentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(AssessmentResponse{
			Response:        "Go to the nearest emergency room.",
			UrgencyLevel:    "high",
			AssessmentStage: "final",
			HospitalData: []facility.Facility{
				{ID: "h1", Name: "City ER", DistanceKM: 1.2},
			},
		})
	}))
	defer srv.Close()

	a := NewAssessor(NewClient(srv.URL, time.Second, Logger.Nop()))
	out, err := a.Assess(context.Background(), assessor.Input{
		Message:  "숨쉬기 힘들어요",
		Language: "ko",
		Location: &assessor.Location{Latitude: 37.5665, Longitude: 126.978},
	})
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}

	if got.UserLocation == nil {
		t.Fatal("Expected user_location on the wire request")
	}
	if got.UserLocation.Latitude != 37.5665 || got.UserLocation.Longitude != 126.978 {
		t.Errorf("Expected coordinates to pass through, got %+v", got.UserLocation)
	}
	if got.Language != "ko" {
		t.Errorf("Expected language on the wire request, got %q", got.Language)
	}
	if len(out.Facilities) != 1 || out.Facilities[0].Name != "City ER" {
		t.Errorf("Expected the backend referral to map through, got %v", out.Facilities)
	}
}
