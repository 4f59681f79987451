package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/api"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/chunking"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/config"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/database"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/email"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/embeddings"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/ingestion"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/llm"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/memory"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/rag"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/vectorstore"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "ingest":
		ingestCmd(cfg, logger, os.Args[2:])
	case "query":
		queryCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("usage: rag-backend <command> [flags]")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  serve   start the HTTP API")
	fmt.Println("  ingest  chunk and index a PDF or TXT file")
	fmt.Println("  query   ask the agent a single question")
}

// deps holds the shared wiring a command needs. Connections that fail to
// open are fatal except Neo4j, which is optional enrichment.
type deps struct {
	pool     *pgxpool.Pool
	driver   neo4j.DriverWithContext
	embedder embeddings.Embedder
	index    vectorstore.Index
	chunker  *chunking.Service
}

func buildDeps(ctx context.Context, cfg config.Config, logger *log.Logger) (deps, error) {
	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return deps{}, fmt.Errorf("postgres connection: %w", err)
	}

	var driver neo4j.DriverWithContext
	if cfg.Neo4jURI != "" {
		driver, err = database.NewNeo4jDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass)
		if err != nil {
			logger.Printf("neo4j unavailable, graph insights disabled: %v", err)
			driver = nil
		}
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		return deps{}, fmt.Errorf("embedder setup: %w", err)
	}

	var index vectorstore.Index
	switch cfg.VectorBackend {
	case "postgres":
		index = vectorstore.NewPostgres(pool)
	case "qdrant", "":
		index, err = vectorstore.NewQdrant(cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.Collection)
		if err != nil {
			return deps{}, fmt.Errorf("qdrant connection: %w", err)
		}
	default:
		return deps{}, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}
	if err := index.Ensure(ctx, embedder.Dimension(), vectorstore.MetricCosine); err != nil {
		return deps{}, fmt.Errorf("ensure collection: %w", err)
	}

	chunker := chunking.NewService(embedder, cfg.Chunking)

	return deps{
		pool:     pool,
		driver:   driver,
		embedder: embedder,
		index:    index,
		chunker:  chunker,
	}, nil
}

func (d deps) close(ctx context.Context) {
	if d.driver != nil {
		_ = d.driver.Close(ctx)
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

func newMemoryStore(cfg config.Config, logger *log.Logger) memory.Store {
	if cfg.RedisURL == "" {
		logger.Println("REDIS_URL not set, conversation memory lives in process only")
		return memory.NewInMemoryStore(cfg.Memory.Window, cfg.Memory.TTL)
	}
	client, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Printf("redis unavailable, falling back to in-process memory: %v", err)
		return memory.NewInMemoryStore(cfg.Memory.Window, cfg.Memory.TTL)
	}
	return memory.NewRedisStore(client, cfg.Memory.Window, cfg.Memory.TTL)
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.ListenAddr, "address to listen on")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}
	defer d.close(ctx)

	if err := database.EnsureMetadataSchema(ctx, d.pool); err != nil {
		logger.Fatalf("metadata schema: %v", err)
	}

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		logger.Fatalf("llm setup: %v", err)
	}

	store := newMemoryStore(cfg, logger)
	ragSvc := rag.NewService(d.embedder, d.index, store, llmClient, logger, cfg.SearchLimit, cfg.MaxSteps)
	ingestSvc := ingestion.NewService(d.pool, d.driver, d.chunker, d.embedder, d.index, logger, cfg.Embeddings.Backend)
	sender := email.NewSender(cfg.SMTP, logger)

	server := &http.Server{
		Addr:              *addr,
		Handler:           api.New(cfg, logger, ragSvc, ingestSvc, d.pool, d.driver, sender),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s (%s embeddings, %s llm)", *addr, cfg.Embeddings.Backend, cfg.LLM.Backend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}
}

func ingestCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	path := flags.String("file", "", "path to a PDF or TXT file")
	method := flags.String("method", string(chunking.MethodRecursive), "chunking method: recursive, semantic or custom")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ingest flags: %v", err)
	}
	if *path == "" {
		logger.Fatal("ingest requires -file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}
	defer d.close(ctx)

	if err := database.EnsureMetadataSchema(ctx, d.pool); err != nil {
		logger.Fatalf("metadata schema: %v", err)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		logger.Fatalf("read file: %v", err)
	}

	svc := ingestion.NewService(d.pool, d.driver, d.chunker, d.embedder, d.index, logger, cfg.Embeddings.Backend)
	result, err := svc.Ingest(ctx, filepath.Base(*path), data, chunking.Method(*method))
	if err != nil {
		logger.Fatalf("ingestion failed: %v", err)
	}

	logger.Printf("indexed %s: %d chunks (%s)", result.Filename, result.ChunkCount, *method)
}

func queryCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("query", flag.ExitOnError)
	question := flags.String("question", "", "question to ask the agent")
	session := flags.String("session", "", "session id for conversation memory")
	noMemory := flags.Bool("no-memory", false, "disable conversation memory for this turn")
	algorithm := flags.String("algorithm", string(vectorstore.MetricCosine), "similarity algorithm: cosine or euclidean")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse query flags: %v", err)
	}

	if strings.TrimSpace(*question) == "" {
		fmt.Print("Enter your question: ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			*question = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Fatalf("read question: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}
	defer d.close(ctx)

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		logger.Fatalf("llm setup: %v", err)
	}

	store := newMemoryStore(cfg, logger)
	svc := rag.NewService(d.embedder, d.index, store, llmClient, logger, cfg.SearchLimit, cfg.MaxSteps)

	resp, err := svc.ProcessQuery(ctx, rag.Request{
		Query:               *question,
		SessionID:           *session,
		UseMemory:           !*noMemory,
		SimilarityAlgorithm: vectorstore.Metric(*algorithm),
	})
	if err != nil {
		logger.Fatalf("query failed: %v", err)
	}

	fmt.Println(resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for idx, source := range resp.Sources {
			fmt.Printf("%d. %s\n", idx+1, source)
		}
	}
	fmt.Printf("\nSession: %s\n", resp.SessionID)
}
