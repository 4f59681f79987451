// Package chunking splits raw document text into retrieval-sized segments.
package chunking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/config"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/embeddings"
)

type Method string

const (
	MethodRecursive Method = "recursive"
	MethodSemantic  Method = "semantic"
	MethodCustom    Method = "custom"
)

var (
	ErrUnsupportedMethod    = errors.New("chunking: unsupported method")
	ErrInvalidConfiguration = errors.New("chunking: invalid configuration")
)

var sentenceSplitter = regexp.MustCompile(`[.!?]+`)

// Service produces chunks using one of the interchangeable strategies.
// The semantic strategy embeds sentences through the configured embedder;
// the other two are pure text algorithms.
type Service struct {
	embedder  embeddings.Embedder
	size      int
	overlap   int
	threshold float64
	cap       int
}

func NewService(embedder embeddings.Embedder, cfg config.ChunkingConfig) *Service {
	size := cfg.Size
	if size <= 0 {
		size = 1000
	}
	overlap := cfg.Overlap
	if overlap < 0 {
		overlap = 200
	}
	threshold := cfg.SimilarityThreshold
	if threshold == 0 {
		threshold = 0.7
	}
	paragraphCap := cfg.ParagraphCap
	if paragraphCap <= 0 {
		paragraphCap = 800
	}

	return &Service{
		embedder:  embedder,
		size:      size,
		overlap:   overlap,
		threshold: threshold,
		cap:       paragraphCap,
	}
}

func (s *Service) Chunk(ctx context.Context, text string, method Method) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	switch method {
	case MethodRecursive:
		return s.recursive(text)
	case MethodSemantic:
		return s.semantic(ctx, text)
	case MethodCustom:
		return s.custom(text), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
}

// recursive walks a fixed window over the text, backing off to the last
// sentence-terminal character when it falls in the second half of the
// window. Consecutive windows share exactly `overlap` characters unless a
// backoff moved the boundary.
func (s *Service) recursive(text string) ([]string, error) {
	if s.overlap >= s.size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidConfiguration, s.overlap, s.size)
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + s.size

		if end < len(text) {
			if terminal := lastSentenceTerminal(text[start:end]); terminal != -1 && terminal > s.size/2 {
				end = start + terminal + 1
			}
		}

		sliceEnd := end
		if sliceEnd > len(text) {
			sliceEnd = len(text)
		}
		if chunk := strings.TrimSpace(text[start:sliceEnd]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// A backoff can shrink the window below the overlap; advance to
		// the boundary rather than moving the cursor backwards.
		if next := end - s.overlap; next > start {
			start = next
		} else {
			start = end
		}
	}

	return chunks, nil
}

// semantic splits on sentence boundaries, embeds every sentence once, and
// groups a sentence with its predecessor when their cosine similarity meets
// the threshold (inclusive). Similarity is adjacency-only, not against a
// running centroid.
func (s *Service) semantic(ctx context.Context, text string) ([]string, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("chunking: semantic method requires an embedder")
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return []string{text}, nil
	}

	vectors, err := s.embedder.Embed(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("embed sentences: %w", err)
	}
	if len(vectors) != len(sentences) {
		return nil, fmt.Errorf("chunking: embedder returned %d vectors for %d sentences", len(vectors), len(sentences))
	}

	var chunks []string
	current := []string{sentences[0]}
	for i := 1; i < len(sentences); i++ {
		if cosineSimilarity(vectors[i], vectors[i-1]) >= s.threshold {
			current = append(current, sentences[i])
			continue
		}
		chunks = append(chunks, strings.Join(current, " "))
		current = []string{sentences[i]}
	}
	chunks = append(chunks, strings.Join(current, " "))

	return chunks, nil
}

// custom packs blank-line-delimited paragraphs greedily up to the cap. A
// single paragraph longer than the cap becomes one oversized chunk.
func (s *Service) custom(text string) []string {
	paragraphs := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	var chunks []string
	current := ""
	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if len(current)+len(paragraph) > s.cap {
			if current != "" {
				chunks = append(chunks, current)
			}
			current = paragraph
			continue
		}

		if current == "" {
			current = paragraph
		} else {
			current += "\n\n" + paragraph
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}

func splitSentences(text string) []string {
	parts := sentenceSplitter.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

func lastSentenceTerminal(window string) int {
	return strings.LastIndexAny(window, ".!?")
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
