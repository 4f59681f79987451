package rag

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/agent"
)

func (s *Service) documentSearchTool() agent.Tool {
	return agent.Tool{
		Name: "document_search",
		Description: "Search for relevant documents based on a query. " +
			"This tool is useful for finding information within documents such as CVs, " +
			"project descriptions, technical papers, or any other textual data. " +
			"Input should be a search query string relevant to the document content.",
		Invoke: func(ctx context.Context, query string) (agent.Result, error) {
			vectors, err := s.embedder.Embed(ctx, []string{query})
			if err != nil {
				return agent.Result{}, fmt.Errorf("embed query: %w", err)
			}
			if len(vectors) == 0 {
				return agent.Result{}, fmt.Errorf("embedder returned no vectors")
			}

			results, err := s.index.Search(ctx, vectors[0], s.searchLimit)
			if err != nil {
				return agent.Result{}, fmt.Errorf("search documents: %w", err)
			}

			sources := make([]string, len(results))
			for i, r := range results {
				sources[i] = fmt.Sprintf("%s (chunk %d)", r.Source, r.Ordinal)
			}

			if len(results) == 0 {
				return agent.Result{Output: "No matching documents found.", Sources: sources}, nil
			}

			formatted := make([]string, len(results))
			for i, r := range results {
				formatted[i] = fmt.Sprintf("Document: %s\nRelevance: %.3f\nContent: %s", r.Source, r.Score, snippet(r.Text, 500))
			}
			return agent.Result{Output: strings.Join(formatted, "\n---\n"), Sources: sources}, nil
		},
	}
}

func (s *Service) memorySearchTool(sessionID string) agent.Tool {
	return agent.Tool{
		Name: "memory_search",
		Description: "Search conversation history for previous context. " +
			"Input should be a search query.",
		Invoke: func(ctx context.Context, query string) (agent.Result, error) {
			if s.store == nil {
				return agent.Result{Output: "No previous conversation found."}, nil
			}

			history, err := s.store.Load(ctx, sessionID)
			if err != nil {
				s.logger.Printf("memory search read failed, treating as empty: %v", err)
				history = nil
			}
			if len(history) == 0 {
				return agent.Result{Output: "No previous conversation found."}, nil
			}

			needle := strings.ToLower(query)
			var relevant []int
			for i, turn := range history {
				if strings.Contains(strings.ToLower(turn.Input), needle) || strings.Contains(strings.ToLower(turn.Output), needle) {
					relevant = append(relevant, i)
				}
			}
			if len(relevant) == 0 {
				return agent.Result{Output: "No relevant previous conversation found."}, nil
			}
			if len(relevant) > 3 {
				relevant = relevant[len(relevant)-3:]
			}

			lines := []string{"Previous conversation snippets:"}
			for _, i := range relevant {
				lines = append(lines, "Q: "+history[i].Input, "A: "+snippet(history[i].Output, 200), "---")
			}
			return agent.Result{Output: strings.Join(lines, "\n")}, nil
		},
	}
}

func snippet(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
