// Package llm talks to hosted text-generation providers and returns JSON documents.
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/noah-isme/assignment-helper-api/pkg/config"
)

// ErrNotConfigured is returned by New when the selected provider has no API key.
var ErrNotConfigured = errors.New("llm provider is not configured")

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llm returned an empty response")

// Request is one JSON completion call.
type Request struct {
	Purpose     string
	System      string
	Prompt      string
	Temperature float64
}

// Client produces a JSON object as text for a prompt.
type Client interface {
	CompleteJSON(ctx context.Context, req Request) (string, error)
	Provider() string
}

const defaultAnthropicModel = "claude-haiku-4-5-20251001"

// New builds the client selected by cfg.Provider.
func New(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, ErrNotConfigured
		}
		model := cfg.Model
		if model == "" || strings.HasPrefix(model, "gpt") {
			model = defaultAnthropicModel
		}
		return NewAnthropic(cfg.AnthropicKey, model, cfg.BaseURL, cfg.MaxOutputTokens, cfg.Timeout), nil
	default:
		if cfg.OpenAIKey == "" {
			return nil, ErrNotConfigured
		}
		return NewOpenAI(cfg.OpenAIKey, cfg.Model, cfg.BaseURL, cfg.MaxOutputTokens, cfg.Timeout), nil
	}
}

// ExtractJSON trims markdown fences and surrounding prose from a model reply.
func ExtractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return text
	}
	return text[start : end+1]
}
