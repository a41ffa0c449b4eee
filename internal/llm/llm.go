package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Request is the generation configuration sent with one prompt.
type Request struct {
	Prompt          string
	TopP            float64
	MinTokens       int
	Temperature     float64
	PresencePenalty float64
}

// DefaultRequest wraps prompt in the sampling settings the reply format was
// tuned against.
func DefaultRequest(prompt string) Request {
	return Request{
		Prompt:          prompt,
		TopP:            0.9,
		MinTokens:       0,
		Temperature:     0.6,
		PresencePenalty: 1.15,
	}
}

// Transformer streams generated text for a prompt. Fragments are passed to
// emit in arrival order; an error from emit stops the stream and is returned.
type Transformer interface {
	Stream(ctx context.Context, req Request, emit func(fragment string) error) error
}

// Settings configure a provider. Credentials are passed here rather than read
// from the environment so that several clients can coexist.
type Settings struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	BaseURL   string `json:"base_url"`
	ReplyFile string `json:"reply_file"`
}

// Providers lists the names accepted by New.
var Providers = []string{"replicate", "openai", "anthropic", "canned"}

// DefaultModel returns the model used when Settings.Model is empty.
func DefaultModel(provider string) string {
	switch provider {
	case "replicate":
		return "meta/meta-llama-3-70b-instruct"
	case "openai":
		return "gpt-4o-mini"
	case "anthropic":
		return "claude-3-5-haiku-latest"
	default:
		return ""
	}
}

// New builds the Transformer named by s.Provider.
func New(s Settings) (Transformer, error) {
	if s.Model == "" {
		s.Model = DefaultModel(s.Provider)
	}
	switch s.Provider {
	case "replicate":
		return NewReplicateLLM(&s)
	case "openai":
		return NewOpenAILLM(&s)
	case "anthropic":
		return NewAnthropicLLM(&s)
	case "canned":
		if s.ReplyFile == "" {
			return nil, errors.New("canned provider requires a reply file")
		}
		return &CannedLLM{Path: s.ReplyFile}, nil
	case "":
		return nil, errors.New("llm provider is required")
	default:
		return nil, fmt.Errorf("llm provider %s not supported", s.Provider)
	}
}

// Collect runs req through t and concatenates every fragment.
func Collect(ctx context.Context, t Transformer, req Request) (string, error) {
	var sb strings.Builder
	err := t.Stream(ctx, req, func(fragment string) error {
		sb.WriteString(fragment)
		return nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
