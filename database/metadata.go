// Package database provides connections and the relational metadata
// store for uploaded files and interview bookings.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FileRecord struct {
	ID             uuid.UUID
	Filename       string
	ChunkCount     int
	VectorIDs      []string
	ChunkingMethod string
	EmbeddingModel string
	UploadedAt     time.Time
}

type Booking struct {
	ID            uuid.UUID
	FullName      string
	Email         string
	InterviewDate string
	InterviewTime string
	Notes         string
	Status        string
	CreatedAt     time.Time
}

const BookingStatusConfirmed = "confirmed"

func EnsureMetadataSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS files (
			id UUID PRIMARY KEY,
			filename TEXT NOT NULL,
			chunk_count INT NOT NULL,
			vector_ids JSONB NOT NULL,
			chunking_method TEXT NOT NULL,
			embedding_model TEXT NOT NULL,
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS interview_bookings (
			id UUID PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL,
			interview_date TEXT NOT NULL,
			interview_time TEXT NOT NULL,
			notes TEXT,
			status TEXT NOT NULL DEFAULT 'confirmed',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

func InsertFileRecord(ctx context.Context, pool *pgxpool.Pool, record FileRecord) (FileRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.UploadedAt = time.Now().UTC()

	vectorIDs, err := json.Marshal(record.VectorIDs)
	if err != nil {
		return FileRecord{}, fmt.Errorf("marshal vector ids: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO files (id, filename, chunk_count, vector_ids, chunking_method, embedding_model, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, record.ID, record.Filename, record.ChunkCount, vectorIDs, record.ChunkingMethod, record.EmbeddingModel, record.UploadedAt); err != nil {
		return FileRecord{}, fmt.Errorf("insert file record: %w", err)
	}

	return record, nil
}

func ListFileRecords(ctx context.Context, pool *pgxpool.Pool) ([]FileRecord, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, filename, chunk_count, vector_ids, chunking_method, embedding_model, uploaded_at
		FROM files
		ORDER BY uploaded_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query file records: %w", err)
	}
	defer rows.Close()

	records := make([]FileRecord, 0)
	for rows.Next() {
		var record FileRecord
		var vectorIDs []byte
		if err := rows.Scan(&record.ID, &record.Filename, &record.ChunkCount, &vectorIDs, &record.ChunkingMethod, &record.EmbeddingModel, &record.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		if err := json.Unmarshal(vectorIDs, &record.VectorIDs); err != nil {
			return nil, fmt.Errorf("decode vector ids: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func InsertBooking(ctx context.Context, pool *pgxpool.Pool, booking Booking) (Booking, error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.Status == "" {
		booking.Status = BookingStatusConfirmed
	}
	booking.CreatedAt = time.Now().UTC()

	if _, err := pool.Exec(ctx, `
		INSERT INTO interview_bookings (id, full_name, email, interview_date, interview_time, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, booking.ID, booking.FullName, booking.Email, booking.InterviewDate, booking.InterviewTime, booking.Notes, booking.Status, booking.CreatedAt); err != nil {
		return Booking{}, fmt.Errorf("insert booking: %w", err)
	}

	return booking, nil
}

func ListBookings(ctx context.Context, pool *pgxpool.Pool) ([]Booking, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, full_name, email, interview_date, interview_time, COALESCE(notes, ''), status, created_at
		FROM interview_bookings
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]Booking, 0)
	for rows.Next() {
		var booking Booking
		if err := rows.Scan(&booking.ID, &booking.FullName, &booking.Email, &booking.InterviewDate, &booking.InterviewTime, &booking.Notes, &booking.Status, &booking.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}
