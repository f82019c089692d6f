package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/aidra-health/aidra/pkg/assessor"
)

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

// GeminiAssessor runs triage directly against the Gemini API.
type GeminiAssessor struct {
	client *genai.Client
	cfg    Config
}

// New creates a new GeminiAssessor instance.
func New(cfg Config) (*GeminiAssessor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash-lite"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini API client: %w", err)
	}

	return &GeminiAssessor{client: client, cfg: cfg}, nil
}

// Assess implements assessor.Assessor.
func (g *GeminiAssessor) Assess(ctx context.Context, input assessor.Input) (*assessor.Output, error) {
	model := g.client.GenerativeModel(g.cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(assessor.PromptFor(input.Language))},
	}
	if g.cfg.Temperature > 0 {
		model.SetTemperature(g.cfg.Temperature)
	}

	cs := model.StartChat()
	cs.History = convertHistory(input.History)

	parts := []genai.Part{genai.Text(input.Message)}
	if input.ImageData != "" {
		img, err := base64.StdEncoding.DecodeString(input.ImageData)
		if err != nil {
			return nil, fmt.Errorf("undecodable image data: %w", err)
		}
		parts = append(parts, genai.Blob{MIMEType: "image/jpeg", Data: img})
	}

	resp, err := cs.SendMessage(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini assessment failed: %w", err)
	}

	text := collectText(resp)
	if text == "" {
		return nil, fmt.Errorf("gemini returned an empty response")
	}

	brief, detailed := assessor.ParseSections(text)
	return &assessor.Output{
		Response:     text,
		BriefText:    brief,
		DetailedText: detailed,
		UrgencyLevel: assessor.UrgencyModerate,
		Confidence:   0.8,
		GeneratedAt:  time.Now(),
	}, nil
}

func (g *GeminiAssessor) Close() error {
	return g.client.Close()
}

func convertHistory(history []assessor.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == assessor.ASSISTANT {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return out
}

func collectText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return b.String()
}
