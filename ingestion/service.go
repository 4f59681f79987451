// Package ingestion handles document text extraction, chunking, embedding,
// and persistence into the vector index and metadata store.
package ingestion

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/chunking"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/database"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/embeddings"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/knowledge"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/vectorstore"
)

type Service struct {
	pool           *pgxpool.Pool
	driver         neo4j.DriverWithContext
	chunker        *chunking.Service
	embedder       embeddings.Embedder
	index          vectorstore.Index
	logger         *log.Logger
	embeddingModel string
}

type Result struct {
	FileID     uuid.UUID
	Filename   string
	ChunkCount int
	VectorIDs  []string
}

func NewService(pool *pgxpool.Pool, driver neo4j.DriverWithContext, chunker *chunking.Service, embedder embeddings.Embedder, index vectorstore.Index, logger *log.Logger, embeddingModel string) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		pool:           pool,
		driver:         driver,
		chunker:        chunker,
		embedder:       embedder,
		index:          index,
		logger:         logger,
		embeddingModel: embeddingModel,
	}
}

// Ingest extracts text from an uploaded payload, chunks and embeds it,
// writes the vectors, and records the upload metadata. The knowledge
// graph sync is best-effort: its failure is logged, not surfaced.
func (s *Service) Ingest(ctx context.Context, filename string, data []byte, method chunking.Method) (Result, error) {
	if s.embedder == nil {
		return Result{}, fmt.Errorf("embedder not configured")
	}
	if s.index == nil {
		return Result{}, fmt.Errorf("vector index not configured")
	}

	text, err := ExtractText(data, filename)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("no text content found in %s", filename)
	}

	chunks, err := s.chunker.Chunk(ctx, text, method)
	if err != nil {
		return Result{}, fmt.Errorf("chunk %s: %w", filename, err)
	}
	if len(chunks) == 0 {
		return Result{}, fmt.Errorf("no chunks produced from %s", filename)
	}

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return Result{}, fmt.Errorf("generate embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return Result{}, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i := range chunks {
		points[i] = vectorstore.Point{
			Vector:  vectors[i],
			Text:    chunks[i],
			Source:  filename,
			Ordinal: i,
		}
	}

	ids, err := s.index.Upsert(ctx, points)
	if err != nil {
		return Result{}, fmt.Errorf("store embeddings: %w", err)
	}

	record := database.FileRecord{
		Filename:       filename,
		ChunkCount:     len(chunks),
		VectorIDs:      ids,
		ChunkingMethod: string(method),
		EmbeddingModel: s.embeddingModel,
	}
	if s.pool != nil {
		record, err = database.InsertFileRecord(ctx, s.pool, record)
		if err != nil {
			return Result{}, fmt.Errorf("record file metadata: %w", err)
		}
	} else {
		record.ID = uuid.New()
	}

	if s.driver != nil {
		doc := knowledge.Document{
			ID:             record.ID.String(),
			Filename:       filename,
			ChunkingMethod: string(method),
			EmbeddingModel: s.embeddingModel,
			VectorIDs:      ids,
		}
		if err := knowledge.SyncDocument(ctx, s.driver, doc); err != nil {
			s.logger.Printf("sync knowledge graph for %s: %v", filename, err)
		}
	}

	s.logger.Printf("ingested %s (%d chunks, %s chunking)", filename, len(chunks), method)

	return Result{
		FileID:     record.ID,
		Filename:   filename,
		ChunkCount: len(chunks),
		VectorIDs:  ids,
	}, nil
}
