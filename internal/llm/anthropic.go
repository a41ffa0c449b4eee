package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// AnthropicLLM streams a Messages API reply. Only the temperature is sent:
// recent models reject requests carrying both temperature and top_p, and the
// API has no presence penalty or minimum length.
type AnthropicLLM struct {
	Model string
	Opts  []option.RequestOption
}

func NewAnthropicLLM(s *Settings) (*AnthropicLLM, error) {
	if s == nil {
		return nil, errors.New("llm settings are nil")
	}
	if s.APIKey == "" {
		return nil, errors.New("anthropic api key missing; set ANTHROPIC_API_KEY or llm.api_key")
	}
	if s.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	return &AnthropicLLM{Model: s.Model, Opts: opts}, nil
}

func (a *AnthropicLLM) Stream(ctx context.Context, req Request, emit func(string) error) error {
	client := anthropic.NewClient(a.Opts...)

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	})
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		text, ok := delta.Delta.AsAny().(anthropic.TextDelta)
		if !ok || text.Text == "" {
			continue
		}
		if err := emit(text.Text); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("anthropic stream error: %w", err)
	}
	return nil
}
