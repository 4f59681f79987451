// Package api exposes the HTTP surface. Handlers are thin: decode,
// validate, delegate to a service, encode.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/chunking"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/config"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/database"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/email"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/ingestion"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/knowledge"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/rag"
	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/vectorstore"
)

const maxUploadBytes = 32 << 20

type Server struct {
	cfg     config.Config
	logger  *log.Logger
	handler http.Handler

	rag    *rag.Service
	ingest *ingestion.Service
	pool   *pgxpool.Pool
	driver neo4j.DriverWithContext
	sender *email.Sender
}

type errorResponse struct {
	Error string `json:"error"`
}

type uploadResponse struct {
	FileID         string `json:"file_id"`
	Filename       string `json:"filename"`
	ChunkCount     int    `json:"chunk_count"`
	ChunkingMethod string `json:"chunking_method"`
	EmbeddingModel string `json:"embedding_model"`
	Message        string `json:"message"`
}

type queryRequest struct {
	Query               string `json:"query"`
	SessionID           string `json:"session_id"`
	UseMemory           *bool  `json:"use_memory"`
	SimilarityAlgorithm string `json:"similarity_algorithm"`
}

type queryResponse struct {
	Answer              string   `json:"answer"`
	Sources             []string `json:"sources"`
	SessionID           string   `json:"session_id"`
	SimilarityAlgorithm string   `json:"similarity_algorithm"`
	MemoryPersisted     bool     `json:"memory_persisted"`
}

type bookingRequest struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	InterviewDate string `json:"interview_date"`
	InterviewTime string `json:"interview_time"`
	Notes         string `json:"notes"`
}

type bookingResponse struct {
	BookingID     string `json:"booking_id"`
	Message       string `json:"message"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	InterviewDate string `json:"interview_date"`
	InterviewTime string `json:"interview_time"`
}

type fileInfo struct {
	ID              string   `json:"id"`
	Filename        string   `json:"filename"`
	ChunkingMethod  string   `json:"chunking_method"`
	EmbeddingModel  string   `json:"embedding_model"`
	ChunkCount      int      `json:"chunk_count"`
	UploadedAt      string   `json:"uploaded_at"`
	CompatibleFiles []string `json:"compatible_files,omitempty"`
}

type bookingInfo struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	InterviewDate string `json:"interview_date"`
	InterviewTime string `json:"interview_time"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

func New(cfg config.Config, logger *log.Logger, ragSvc *rag.Service, ingestSvc *ingestion.Service, pool *pgxpool.Pool, driver neo4j.DriverWithContext, sender *email.Sender) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		rag:    ragSvc,
		ingest: ingestSvc,
		pool:   pool,
		driver: driver,
		sender: sender,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/v1/upload", s.handleUpload)
	mux.HandleFunc("/api/v1/query", s.handleQuery)
	mux.HandleFunc("/api/v1/book-interview", s.handleBookInterview)
	mux.HandleFunc("/api/v1/files", s.handleListFiles)
	mux.HandleFunc("/api/v1/bookings", s.handleListBookings)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "RAG backend is running",
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload form: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" && ext != ".txt" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("only PDF and TXT files are allowed"))
		return
	}

	method := chunking.Method(r.FormValue("chunking_method"))
	if method == "" {
		method = chunking.MethodRecursive
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	result, err := s.ingest.Ingest(r.Context(), header.Filename, data, method)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chunking.ErrUnsupportedMethod) || errors.Is(err, ingestion.ErrUnsupportedFormat) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		FileID:         result.FileID.String(),
		Filename:       result.Filename,
		ChunkCount:     result.ChunkCount,
		ChunkingMethod: string(method),
		EmbeddingModel: s.cfg.Embeddings.Backend,
		Message:        "File uploaded and processed successfully",
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("query is required"))
		return
	}

	useMemory := true
	if req.UseMemory != nil {
		useMemory = *req.UseMemory
	}
	algorithm := vectorstore.Metric(req.SimilarityAlgorithm)
	if algorithm == "" {
		algorithm = vectorstore.MetricCosine
	}

	resp, err := s.rag.ProcessQuery(r.Context(), rag.Request{
		Query:               req.Query,
		SessionID:           req.SessionID,
		UseMemory:           useMemory,
		SimilarityAlgorithm: algorithm,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, vectorstore.ErrMetricMismatch) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}

	s.writeJSON(w, http.StatusOK, queryResponse{
		Answer:              resp.Answer,
		Sources:             resp.Sources,
		SessionID:           resp.SessionID,
		SimilarityAlgorithm: string(algorithm),
		MemoryPersisted:     resp.MemoryPersisted,
	})
}

func (s *Server) handleBookInterview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.FullName == "" || req.Email == "" || req.InterviewDate == "" || req.InterviewTime == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("full_name, email, interview_date and interview_time are required"))
		return
	}
	if !strings.Contains(req.Email, "@") {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid email address"))
		return
	}

	booking, err := database.InsertBooking(r.Context(), s.pool, database.Booking{
		FullName:      req.FullName,
		Email:         req.Email,
		InterviewDate: req.InterviewDate,
		InterviewTime: req.InterviewTime,
		Notes:         req.Notes,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	if s.sender != nil {
		go s.sender.SendInterviewNotifications(booking.FullName, booking.Email, booking.InterviewDate, booking.InterviewTime)
	}

	s.writeJSON(w, http.StatusOK, bookingResponse{
		BookingID:     booking.ID.String(),
		Message:       "Interview booked successfully. Confirmation email will be sent.",
		FullName:      booking.FullName,
		Email:         booking.Email,
		InterviewDate: booking.InterviewDate,
		InterviewTime: booking.InterviewTime,
	})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	records, err := database.ListFileRecords(r.Context(), s.pool)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	insights := map[string]knowledge.Insight{}
	if s.driver != nil && len(records) > 0 {
		filenames := make([]string, len(records))
		for i, record := range records {
			filenames[i] = record.Filename
		}
		found, insightErr := knowledge.DocumentInsights(r.Context(), s.driver, filenames)
		if insightErr != nil {
			s.logger.Printf("document insights: %v", insightErr)
		} else {
			insights = found
		}
	}

	files := make([]fileInfo, len(records))
	for i, record := range records {
		files[i] = fileInfo{
			ID:             record.ID.String(),
			Filename:       record.Filename,
			ChunkingMethod: record.ChunkingMethod,
			EmbeddingModel: record.EmbeddingModel,
			ChunkCount:     record.ChunkCount,
			UploadedAt:     record.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if insight, ok := insights[record.Filename]; ok {
			files[i].CompatibleFiles = insight.CompatibleFiles
		}
	}
	s.writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	bookings, err := database.ListBookings(r.Context(), s.pool)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	infos := make([]bookingInfo, len(bookings))
	for i, booking := range bookings {
		infos[i] = bookingInfo{
			ID:            booking.ID.String(),
			FullName:      booking.FullName,
			Email:         booking.Email,
			InterviewDate: booking.InterviewDate,
			InterviewTime: booking.InterviewTime,
			Status:        booking.Status,
			CreatedAt:     booking.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		s.logger.Printf("request failed: %v", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func decodeJSON(r *http.Request, dst any) error {
	defer io.Copy(io.Discard, r.Body)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
