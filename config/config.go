package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendLocal  = "local"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

type EmbeddingConfig struct {
	Backend   string
	Model     string
	Dimension int
}

type LLMConfig struct {
	Backend string
	Model   string
}

type ChunkingConfig struct {
	Size                int
	Overlap             int
	SimilarityThreshold float64
	ParagraphCap        int
}

type MemoryConfig struct {
	Window int
	TTL    time.Duration
}

type QdrantConfig struct {
	Host       string
	Port       int
	Collection string
}

type SMTPConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

type Config struct {
	ListenAddr  string
	PostgresDSN string
	RedisURL    string
	Neo4jURI    string
	Neo4jUser   string
	Neo4jPass   string

	// VectorBackend selects where embeddings are stored: "qdrant" or
	// "postgres" (pgvector).
	VectorBackend string

	Qdrant QdrantConfig

	Embeddings EmbeddingConfig
	LLM        LLMConfig
	Chunking   ChunkingConfig
	Memory     MemoryConfig

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string

	SMTP SMTPConfig

	SearchLimit int
	MaxSteps    int
}

func Load() Config {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	return Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8000"),
		PostgresDSN:   getEnv("DATABASE_URL", "postgres://localhost:5432/rag_db?sslmode=disable"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
		Neo4jURI:      getEnv("NEO4J_URI", "neo4j://localhost:7687"),
		Neo4jUser:     getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPass:     getEnv("NEO4J_PASSWORD", "password"),
		VectorBackend: getEnv("VECTOR_BACKEND", "qdrant"),
		Qdrant: QdrantConfig{
			Host:       getEnv("QDRANT_HOST", "localhost"),
			Port:       getEnvInt("QDRANT_PORT", 6334),
			Collection: getEnv("QDRANT_COLLECTION", "document_embeddings"),
		},
		Embeddings: EmbeddingConfig{
			Backend:   getEnv("EMBEDDING_BACKEND", BackendLocal),
			Model:     getEnv("EMBEDDING_MODEL", "all-minilm"),
			Dimension: getEnvInt("EMBEDDING_DIMENSION", 0),
		},
		LLM: LLMConfig{
			Backend: getEnv("LLM_BACKEND", BackendGemini),
			Model:   getEnv("LLM_MODEL", "gemini-2.5-flash"),
		},
		Chunking: ChunkingConfig{
			Size:                getEnvInt("CHUNK_SIZE", 1000),
			Overlap:             getEnvInt("CHUNK_OVERLAP", 200),
			SimilarityThreshold: getEnvFloat("SEMANTIC_SIMILARITY_THRESHOLD", 0.7),
			ParagraphCap:        getEnvInt("CHUNK_PARAGRAPH_CAP", 800),
		},
		Memory: MemoryConfig{
			Window: getEnvInt("CONVERSATION_HISTORY_LIMIT", 20),
			TTL:    time.Duration(getEnvInt("MEMORY_EXPIRY_HOURS", 24)) * time.Hour,
		},
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		SMTP: SMTPConfig{
			Server:   getEnv("SMTP_SERVER", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", ""),
			To:       getEnv("EMAIL_TO", ""),
		},
		SearchLimit: getEnvInt("DEFAULT_SEARCH_LIMIT", 5),
		MaxSteps:    getEnvInt("AGENT_MAX_STEPS", 5),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
