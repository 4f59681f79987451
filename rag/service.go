// Package rag composes the embedder, vector index, conversation store,
// and agent loop into the end-to-end query pipeline.
package rag

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/agent"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/embeddings"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/llm"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/memory"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/vectorstore"
)

const defaultSearchLimit = 5

type Service struct {
	embedder    embeddings.Embedder
	index       vectorstore.Index
	store       memory.Store
	llm         llm.Client
	logger      *log.Logger
	searchLimit int
	maxSteps    int
}

type Request struct {
	Query               string
	SessionID           string
	UseMemory           bool
	SimilarityAlgorithm vectorstore.Metric
}

type Response struct {
	Answer    string
	Sources   []string
	SessionID string
	// MemoryPersisted is false when an answer was produced but the new
	// turn could not be saved. The turn itself still succeeds.
	MemoryPersisted bool
}

func NewService(embedder embeddings.Embedder, index vectorstore.Index, store memory.Store, client llm.Client, logger *log.Logger, searchLimit, maxSteps int) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if searchLimit <= 0 {
		searchLimit = defaultSearchLimit
	}

	return &Service{
		embedder:    embedder,
		index:       index,
		store:       store,
		llm:         client,
		logger:      logger,
		searchLimit: searchLimit,
		maxSteps:    maxSteps,
	}
}

// ProcessQuery runs one full query turn. Everything the turn needs
// (tools, history, the trace) is built per call, so concurrent turns for
// different sessions are fully independent.
func (s *Service) ProcessQuery(ctx context.Context, req Request) (Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Response{}, fmt.Errorf("query cannot be empty")
	}
	if s.embedder == nil {
		return Response{}, fmt.Errorf("embedder is not configured")
	}
	if s.index == nil {
		return Response{}, fmt.Errorf("vector index is not configured")
	}
	if s.llm == nil {
		return Response{}, fmt.Errorf("llm client is not configured")
	}

	algorithm := req.SimilarityAlgorithm
	if algorithm == "" {
		algorithm = vectorstore.MetricCosine
	}
	if configured := s.index.DistanceMetric(); configured != "" && algorithm != configured {
		return Response{}, fmt.Errorf("%w: collection uses %s, request asked for %s", vectorstore.ErrMetricMismatch, configured, algorithm)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var history []memory.Turn
	if req.UseMemory && s.store != nil {
		loaded, err := s.store.Load(ctx, sessionID)
		if err != nil {
			s.logger.Printf("load conversation history for %s failed, continuing without: %v", sessionID, err)
		} else {
			history = loaded
		}
	}

	tools := []agent.Tool{
		s.documentSearchTool(),
		s.memorySearchTool(sessionID),
		agent.EvalTool(),
	}

	loop := agent.New(s.llm, s.maxSteps, s.logger)
	outcome, err := loop.Run(ctx, query, tools, history)
	if err != nil {
		return Response{}, fmt.Errorf("process query: %w", err)
	}
	if outcome.Status == agent.StatusAborted {
		s.logger.Printf("agent loop aborted for session %s after %d steps", sessionID, len(outcome.Steps))
	}

	persisted := false
	if req.UseMemory && s.store != nil {
		turn := memory.Turn{
			Input:     query,
			Output:    outcome.Answer,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.store.Append(ctx, sessionID, turn); err != nil {
			s.logger.Printf("answer produced but conversation history for %s not persisted: %v", sessionID, err)
		} else {
			persisted = true
		}
	}

	sources := outcome.Sources
	if sources == nil {
		sources = []string{}
	}

	return Response{
		Answer:          outcome.Answer,
		Sources:         sources,
		SessionID:       sessionID,
		MemoryPersisted: persisted,
	}, nil
}
