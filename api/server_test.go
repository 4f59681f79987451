package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/api"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/chunking"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/config"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/embeddings"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/ingestion"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/llm"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/memory"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/rag"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/vectorstore"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (stubEmbedder) Dimension() int { return 3 }

var _ embeddings.Embedder = stubEmbedder{}

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

var _ llm.Client = (*stubLLM)(nil)

func newTestServer(t *testing.T, client llm.Client) *api.Server {
	t.Helper()

	index := vectorstore.NewMemory()
	if err := index.Ensure(context.Background(), 3, vectorstore.MetricCosine); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	logger := log.New(io.Discard, "", 0)
	cfg := config.Config{
		Embeddings: config.EmbeddingConfig{Backend: "local", Dimension: 3},
	}
	store := memory.NewInMemoryStore(20, 0)
	ragSvc := rag.NewService(stubEmbedder{}, index, store, client, logger, 5, 5)
	chunker := chunking.NewService(nil, config.ChunkingConfig{})
	ingestSvc := ingestion.NewService(nil, nil, chunker, stubEmbedder{}, index, logger, "local")

	return api.New(cfg, logger, ragSvc, ingestSvc, nil, nil, nil)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, &stubLLM{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("unexpected status: %q", body["status"])
	}
}

func TestQueryEndpoint(t *testing.T) {
	server := newTestServer(t, &stubLLM{response: "Thought: Easy.\nFinal Answer: Forty-two."})

	payload := `{"query":"what is the answer?","session_id":"session-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Answer              string   `json:"answer"`
		Sources             []string `json:"sources"`
		SessionID           string   `json:"session_id"`
		SimilarityAlgorithm string   `json:"similarity_algorithm"`
		MemoryPersisted     bool     `json:"memory_persisted"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Answer != "Forty-two." {
		t.Fatalf("unexpected answer: %q", body.Answer)
	}
	if body.SessionID != "session-1" {
		t.Fatalf("unexpected session id: %q", body.SessionID)
	}
	if body.SimilarityAlgorithm != "cosine" {
		t.Fatalf("expected cosine default, got %q", body.SimilarityAlgorithm)
	}
	if !body.MemoryPersisted {
		t.Fatal("expected memory persisted with the default use_memory")
	}
	if body.Sources == nil {
		t.Fatal("expected a sources array in the response")
	}
}

func TestQueryEndpointRejectsBlankQuery(t *testing.T) {
	server := newTestServer(t, &stubLLM{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"query":"  "}`))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQueryEndpointRejectsMetricMismatch(t *testing.T) {
	server := newTestServer(t, &stubLLM{})

	payload := `{"query":"hello","similarity_algorithm":"euclidean"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a metric the collection was not built with, got %d", rec.Code)
	}
}

func TestQueryEndpointSurfacesModelFailure(t *testing.T) {
	server := newTestServer(t, &stubLLM{err: errors.New("backend down")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"query":"hello"}`))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestUploadEndpoint(t *testing.T) {
	server := newTestServer(t, &stubLLM{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "handbook.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("The vacation allowance is 25 days per year.")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.WriteField("chunking_method", "custom"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		FileID         string `json:"file_id"`
		Filename       string `json:"filename"`
		ChunkCount     int    `json:"chunk_count"`
		ChunkingMethod string `json:"chunking_method"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Filename != "handbook.txt" {
		t.Fatalf("unexpected filename: %q", body.Filename)
	}
	if body.ChunkCount != 1 {
		t.Fatalf("expected 1 chunk, got %d", body.ChunkCount)
	}
	if body.ChunkingMethod != "custom" {
		t.Fatalf("unexpected chunking method: %q", body.ChunkingMethod)
	}
	if body.FileID == "" {
		t.Fatal("expected a file id")
	}
}

func TestUploadEndpointRejectsUnsupportedExtension(t *testing.T) {
	server := newTestServer(t, &stubLLM{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "resume.docx")
	part.Write([]byte("binary"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(t, &stubLLM{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/query", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("expected Allow header, got %q", rec.Header().Get("Allow"))
	}
}
