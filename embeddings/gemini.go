package embeddings

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const geminiDimension = 768

type geminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
}

func NewGeminiEmbedder(opts Options) (Embedder, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  opts.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "text-embedding-004"
	}
	dimension := opts.Dimension
	if dimension <= 0 {
		dimension = geminiDimension
	}

	return &geminiEmbedder{
		client:    client,
		model:     model,
		dimension: dimension,
	}, nil
}

func (e *geminiEmbedder) Dimension() int {
	return e.dimension
}

func (e *geminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	dim := int32(e.dimension)
	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini embeddings: %v", ErrBackendUnavailable, err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	results := make([][]float32, len(resp.Embeddings))
	for i, embedding := range resp.Embeddings {
		if len(embedding.Values) != e.dimension {
			return nil, fmt.Errorf("gemini embedding dimension mismatch: expected %d, got %d", e.dimension, len(embedding.Values))
		}
		results[i] = embedding.Values
	}

	return results, nil
}

var _ Embedder = (*geminiEmbedder)(nil)
