package llm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
)

const replicateBaseURL = "https://api.replicate.com/v1"

// ReplicateLLM runs a model hosted on Replicate and follows its server-sent
// event stream.
type ReplicateLLM struct {
	client *resty.Client
	model  string
}

type replicateInput struct {
	TopP            float64 `json:"top_p"`
	Prompt          string  `json:"prompt"`
	MinTokens       int     `json:"min_tokens"`
	Temperature     float64 `json:"temperature"`
	PresencePenalty float64 `json:"presence_penalty"`
}

type replicatePrediction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	URLs   struct {
		Get    string `json:"get"`
		Stream string `json:"stream"`
	} `json:"urls"`
}

func NewReplicateLLM(s *Settings) (*ReplicateLLM, error) {
	if s == nil {
		return nil, errors.New("llm settings are nil")
	}
	if s.APIKey == "" {
		return nil, errors.New("replicate api token missing; set REPLICATE_API_TOKEN or llm.api_key")
	}
	if strings.Count(s.Model, "/") != 1 {
		return nil, fmt.Errorf("replicate model must be owner/name, got %q", s.Model)
	}
	base := s.BaseURL
	if base == "" {
		base = replicateBaseURL
	}
	client := resty.New().
		SetBaseURL(base).
		SetAuthToken(s.APIKey)
	return &ReplicateLLM{client: client, model: s.Model}, nil
}

func (r *ReplicateLLM) Stream(ctx context.Context, req Request, emit func(string) error) error {
	var prediction replicatePrediction
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"input": replicateInput{
				TopP:            req.TopP,
				Prompt:          req.Prompt,
				MinTokens:       req.MinTokens,
				Temperature:     req.Temperature,
				PresencePenalty: req.PresencePenalty,
			},
			"stream": true,
		}).
		SetResult(&prediction).
		Post("/models/" + r.model + "/predictions")
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to create prediction: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}
	if prediction.URLs.Stream == "" {
		return fmt.Errorf("prediction %s has no stream url", prediction.ID)
	}

	slog.DebugContext(ctx, "replicate prediction created", "id", prediction.ID, "model", r.model)

	streamResp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/event-stream").
		SetHeader("Cache-Control", "no-store").
		SetDoNotParseResponse(true).
		Get(prediction.URLs.Stream)
	if err != nil {
		return fmt.Errorf("failed to open prediction stream: %w", err)
	}
	body := streamResp.RawBody()
	defer body.Close()

	if streamResp.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(body, 4096))
		return fmt.Errorf("failed to open prediction stream: %s: %s", streamResp.Status(), strings.TrimSpace(string(msg)))
	}

	return readEvents(body, func(event, data string) (bool, error) {
		switch event {
		case "output", "":
			return false, emit(data)
		case "error":
			return true, fmt.Errorf("prediction %s failed: %s", prediction.ID, data)
		case "done":
			return true, nil
		default:
			return false, nil
		}
	})
}

// readEvents parses a text/event-stream body and calls handle once per
// event. Multi-line data fields are joined with newlines. handle returns true
// to stop reading.
func readEvents(body io.Reader, handle func(event, data string) (bool, error)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var event string
	var data []string
	pending := false

	dispatch := func() (bool, error) {
		if !pending {
			return false, nil
		}
		stop, err := handle(event, strings.Join(data, "\n"))
		event, data, pending = "", nil, false
		return stop, err
	}

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			stop, err := dispatch()
			if err != nil || stop {
				return err
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event = value
			pending = true
		case "data":
			data = append(data, value)
			pending = true
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read event stream: %w", err)
	}
	_, err := dispatch()
	return err
}
