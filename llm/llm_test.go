package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/config"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/llm"
)

func TestNewClientLocalDefaults(t *testing.T) {
	cfg := config.Config{
		LLM:        config.LLMConfig{Backend: config.BackendLocal, Model: "llama3.2"},
		OllamaHost: "http://localhost:11434",
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	if client == nil {
		t.Fatal("expected non-nil client")
	}
}

func TestNewClientOpenAIMissingKey(t *testing.T) {
	cfg := config.Config{
		LLM: config.LLMConfig{Backend: config.BackendOpenAI, Model: "gpt-4o-mini"},
	}

	if _, err := llm.NewClient(cfg); err == nil {
		t.Fatal("expected error for missing OPENAI_API_KEY")
	}
}

func TestNewClientUnknownBackend(t *testing.T) {
	cfg := config.Config{LLM: config.LLMConfig{Backend: "bedrock"}}

	_, err := llm.NewClient(cfg)
	if !errors.Is(err, llm.ErrUnsupportedBackend) {
		t.Fatalf("expected ErrUnsupportedBackend, got %v", err)
	}
}

func TestOllamaClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Stream   bool   `json:"stream"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Fatal("expected non-streaming request")
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != llm.RoleUser {
			t.Fatalf("unexpected messages: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "Final Answer: hello"},
			"done":    true,
		})
	}))
	defer server.Close()

	client := llm.NewOllamaClient(llm.Options{OllamaHost: server.URL, Model: "llama3.2"})

	out, err := client.Generate(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Final Answer: hello" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestOllamaClientWrapsAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not loaded"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := llm.NewOllamaClient(llm.Options{OllamaHost: server.URL, Model: "llama3.2"})

	_, err := client.Generate(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if !errors.Is(err, llm.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}
