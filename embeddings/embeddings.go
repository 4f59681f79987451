// Package embeddings maps text to fixed-dimension vectors across multiple
// backend models.
package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/config"
)

var (
	ErrUnsupportedBackend = errors.New("embeddings: unsupported backend")
	ErrBackendUnavailable = errors.New("embeddings: backend unavailable")
)

// Embedder converts texts to vectors. Output is length- and
// order-preserving: vector i corresponds to input text i. Dimension is
// fixed per backend and published so callers can validate index
// compatibility before a write.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

type Options struct {
	Backend   string
	Model     string
	Dimension int

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
}

func NewEmbedder(cfg config.Config) (Embedder, error) {
	opts := Options{
		Backend:       cfg.Embeddings.Backend,
		Model:         cfg.Embeddings.Model,
		Dimension:     cfg.Embeddings.Dimension,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		GeminiAPIKey:  cfg.GeminiAPIKey,
	}

	switch opts.Backend {
	case config.BackendLocal:
		return NewOllamaEmbedder(opts), nil
	case config.BackendOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai backend selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIEmbedder(opts), nil
	case config.BackendGemini:
		if opts.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini backend selected but GEMINI_API_KEY not set")
		}
		return NewGeminiEmbedder(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, opts.Backend)
	}
}
