package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/aidra-health/aidra/pkg/assessor"
)

type Config struct {
	APIKey string
	Model  string
}

// OpenAIAssessor runs triage against the OpenAI chat completions API.
type OpenAIAssessor struct {
	client openai.Client
	model  string
}

func New(cfg Config) (*OpenAIAssessor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is not configured")
	}
	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &OpenAIAssessor{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
	}, nil
}

// Assess implements assessor.Assessor.
func (o *OpenAIAssessor) Assess(ctx context.Context, input assessor.Input) (*assessor.Output, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(input.History)+2)
	msgs = append(msgs, openai.SystemMessage(assessor.PromptFor(input.Language)))
	for _, msg := range input.History {
		msgs = append(msgs, convertMsg(msg))
	}
	msgs = append(msgs, openai.UserMessage(input.Message))

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    o.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai assessment failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	text := completion.Choices[0].Message.Content
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

func convertMsg(msg assessor.Message) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case assessor.ASSISTANT:
		return openai.AssistantMessage(msg.Content)
	case assessor.SYSTEM:
		return openai.SystemMessage(msg.Content)
	}
	return openai.UserMessage(msg.Content)
}
