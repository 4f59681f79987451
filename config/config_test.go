package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ListenAddr != ":8000" {
		t.Fatalf("unexpected listen addr: %q", cfg.ListenAddr)
	}
	if cfg.Chunking.Size != 1000 || cfg.Chunking.Overlap != 200 {
		t.Fatalf("unexpected chunking defaults: %+v", cfg.Chunking)
	}
	if cfg.Chunking.SimilarityThreshold != 0.7 {
		t.Fatalf("unexpected similarity threshold: %f", cfg.Chunking.SimilarityThreshold)
	}
	if cfg.Memory.Window != 20 || cfg.Memory.TTL != 24*time.Hour {
		t.Fatalf("unexpected memory defaults: %+v", cfg.Memory)
	}
	if cfg.Qdrant.Port != 6334 || cfg.Qdrant.Collection != "document_embeddings" {
		t.Fatalf("unexpected qdrant defaults: %+v", cfg.Qdrant)
	}
	if cfg.Embeddings.Backend != BackendLocal {
		t.Fatalf("unexpected embedding backend: %q", cfg.Embeddings.Backend)
	}
	if cfg.SearchLimit != 5 || cfg.MaxSteps != 5 {
		t.Fatalf("unexpected agent defaults: limit=%d steps=%d", cfg.SearchLimit, cfg.MaxSteps)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "512")
	t.Setenv("EMBEDDING_BACKEND", BackendOpenAI)
	t.Setenv("MEMORY_EXPIRY_HOURS", "48")
	t.Setenv("SEMANTIC_SIMILARITY_THRESHOLD", "0.85")

	cfg := Load()

	if cfg.Chunking.Size != 512 {
		t.Fatalf("expected chunk size 512, got %d", cfg.Chunking.Size)
	}
	if cfg.Embeddings.Backend != BackendOpenAI {
		t.Fatalf("expected openai backend, got %q", cfg.Embeddings.Backend)
	}
	if cfg.Memory.TTL != 48*time.Hour {
		t.Fatalf("expected 48h TTL, got %s", cfg.Memory.TTL)
	}
	if cfg.Chunking.SimilarityThreshold != 0.85 {
		t.Fatalf("expected threshold 0.85, got %f", cfg.Chunking.SimilarityThreshold)
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")

	cfg := Load()
	if cfg.Chunking.Size != 1000 {
		t.Fatalf("expected fallback 1000 for unparseable value, got %d", cfg.Chunking.Size)
	}
}
