package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM streams chat completions through the official openai-go SDK.
// Any OpenAI-compatible endpoint works when BaseURL is set. MinTokens has no
// equivalent in the chat API and is not sent.
type OpenAILLM struct {
	Model string
	Opts  []option.RequestOption
}

func NewOpenAILLM(s *Settings) (*OpenAILLM, error) {
	if s == nil {
		return nil, errors.New("llm settings are nil")
	}
	if s.APIKey == "" {
		return nil, errors.New("openai api key missing; set OPENAI_API_KEY or llm.api_key")
	}
	if s.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	return &OpenAILLM{Model: s.Model, Opts: opts}, nil
}

func (o *OpenAILLM) Stream(ctx context.Context, req Request, emit func(string) error) error {
	client := openai.NewClient(o.Opts...)

	stream := client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		TopP:            openai.Float(req.TopP),
		Temperature:     openai.Float(req.Temperature),
		PresencePenalty: openai.Float(req.PresencePenalty),
	})
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := emit(choice.Delta.Content); err != nil {
				return err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai stream error: %w", err)
	}
	return nil
}
