package app

import (
	"fmt"
	"time"

	"github.com/aidra-health/aidra/internal/config"
	"github.com/aidra-health/aidra/internal/triage"
	"github.com/aidra-health/aidra/pkg/Logger"
	"github.com/aidra-health/aidra/pkg/assessor"
	"github.com/aidra-health/aidra/pkg/assessor/gemini"
	"github.com/aidra-health/aidra/pkg/assessor/openai"
)

// NewAssessor selects the triage backend from configuration. "http" talks to
// the hosted assessment service; "gemini" and "openai" run the triage prompt
// directly against the model provider.
func NewAssessor(cfg config.AssessorConfig, logger *Logger.Logger) (assessor.Assessor, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.New(gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
		})
	case "openai":
		return openai.New(openai.Config{
			APIKey: cfg.OpenAIAPIKey,
		})
	case "http", "":
		if cfg.BackendURL == "" {
			return nil, fmt.Errorf("assessor: backend_url is required for the http provider")
		}
		timeout := time.Duration(cfg.TimeoutSecs) * time.Second
		client := triage.NewClient(cfg.BackendURL, timeout, logger)
		return triage.NewAssessor(client), nil
	default:
		return nil, fmt.Errorf("assessor: unknown provider %q", cfg.Provider)
	}
}
