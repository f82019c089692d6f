package app

import (
	"testing"

	"github.com/aidra-health/aidra/internal/config"
	"github.com/aidra-health/aidra/pkg/Logger"
)

func TestProbeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"wss://voice.example.com/v1/dialogue", "https://voice.example.com/health"},
		{"ws://localhost:9000/session?agent_id=x", "http://localhost:9000/health"},
		{"https://voice.example.com/api", "https://voice.example.com/health"},
	}
	for _, c := range cases {
		if got := probeURL(c.in); got != c.want {
			t.Errorf("probeURL(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestNewAssessorHTTP(t *testing.T) {
	a, err := NewAssessor(config.AssessorConfig{
		Provider:   "http",
		BackendURL: "http://localhost:8000",
	}, Logger.Nop())
	if err != nil {
		t.Fatalf("Expected http assessor to build, got %v", err)
	}
	if a == nil {
		t.Fatal("Expected a non-nil assessor")
	}
}

func TestNewAssessorHTTPRequiresURL(t *testing.T) {
	if _, err := NewAssessor(config.AssessorConfig{Provider: "http"}, Logger.Nop()); err == nil {
		t.Error("Expected missing backend_url to fail")
	}
}

func TestNewAssessorUnknownProvider(t *testing.T) {
	if _, err := NewAssessor(config.AssessorConfig{Provider: "cobol"}, Logger.Nop()); err == nil {
		t.Error("Expected unknown provider to fail")
	}
}

func TestNewAssessorMissingKeys(t *testing.T) {
	// Model providers refuse to build without an API key.
	if _, err := NewAssessor(config.AssessorConfig{Provider: "openai"}, Logger.Nop()); err == nil {
		t.Error("Expected openai without a key to fail")
	}
	if _, err := NewAssessor(config.AssessorConfig{Provider: "gemini"}, Logger.Nop()); err == nil {
		t.Error("Expected gemini without a key to fail")
	}
}
