package extract

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	genai "google.golang.org/genai"
)

// ErrInvalidResponse means the model returned no usable candidate text.
var ErrInvalidResponse = errors.New("extract: invalid response from model")

const (
	defaultMaxAttempts = 3
	baseRetryDelay     = 5 * time.Second
)

// Generator is the LLM surface the extraction service depends on. Tests
// substitute a canned implementation.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error)
}

// GeminiClient is a thin wrapper around the official genai client that
// requests JSON output and retries transient failures.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }

// GenerateJSON sends the prompt and returns the raw JSON text of the first
// candidate. Failed calls are retried with exponential backoff.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	return g.generate(ctx, prompt, &genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
}

// GenerateText sends the prompt without constraining the response format.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	raw, err := g.generate(ctx, prompt, nil)
	return string(raw), err
}

func (g *GeminiClient) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (json.RawMessage, error) {
	var lastErr error
	for attempt := 0; attempt < defaultMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(baseRetryDelay * time.Duration(1<<(attempt-1))):
			}
		}

		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			cfg,
		)
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
			len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = ErrInvalidResponse
			continue
		}
		return json.RawMessage(resp.Candidates[0].Content.Parts[0].Text), nil
	}
	return nil, lastErr
}
