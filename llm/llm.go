// Package llm provides clients for the reasoning models that drive the
// agent loop.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrUnsupportedBackend = errors.New("llm: unsupported backend")
	ErrBackendUnavailable = errors.New("llm: backend unavailable")
)

type Message struct {
	Role    string
	Content string
}

type Client interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

type Options struct {
	Backend string
	Model   string

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
}

func NewClient(cfg config.Config) (Client, error) {
	opts := Options{
		Backend:       cfg.LLM.Backend,
		Model:         cfg.LLM.Model,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		GeminiAPIKey:  cfg.GeminiAPIKey,
	}

	switch opts.Backend {
	case config.BackendLocal:
		return NewOllamaClient(opts), nil
	case config.BackendOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai backend selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIClient(opts), nil
	case config.BackendGemini:
		if opts.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini backend selected but GEMINI_API_KEY not set")
		}
		return NewGeminiClient(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, opts.Backend)
	}
}
