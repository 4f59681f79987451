package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresIndex implements Index on pgvector. It is the fallback backend
// for deployments that already run Postgres and do not want a separate
// vector service.
type PostgresIndex struct {
	pool      *pgxpool.Pool
	dimension int
	metric    Metric
}

func NewPostgres(pool *pgxpool.Pool) *PostgresIndex {
	return &PostgresIndex{pool: pool}
}

func (p *PostgresIndex) Ensure(ctx context.Context, dimension int, metric Metric) error {
	if dimension <= 0 {
		return fmt.Errorf("postgres index: dimension must be positive")
	}

	ops, err := pgvectorOps(metric)
	if err != nil {
		return err
	}

	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS document_chunks (
			id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			ordinal INT NOT NULL,
			content TEXT NOT NULL,
			embedding VECTOR(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, dimension),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding ON document_chunks USING ivfflat (embedding %s)", ops),
		"CREATE INDEX IF NOT EXISTS idx_document_chunks_source ON document_chunks(source)",
	}

	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	p.dimension = dimension
	p.metric = metric
	return nil
}

// Upsert writes every point inside one transaction so a failure leaves no
// partial commit visible.
func (p *PostgresIndex) Upsert(ctx context.Context, points []Point) ([]string, error) {
	for i := range points {
		if err := validateDimension(p.dimension, len(points[i].Vector)); err != nil {
			return nil, err
		}
	}

	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]string, len(points))
	for i, point := range points {
		id := point.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id

		if _, err := tx.Exec(ctx, `
			INSERT INTO document_chunks (id, source, ordinal, content, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET source = EXCLUDED.source,
			    ordinal = EXCLUDED.ordinal,
			    content = EXCLUDED.content,
			    embedding = EXCLUDED.embedding
		`, id, point.Source, point.Ordinal, point.Text, pgvector.NewVector(point.Vector)); err != nil {
			return nil, fmt.Errorf("insert chunk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit upsert: %w", err)
	}

	return ids, nil
}

func (p *PostgresIndex) Search(ctx context.Context, vector []float32, limit int) ([]SearchResult, error) {
	if err := validateDimension(p.dimension, len(vector)); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	probes := limit * 10
	if probes < 10 {
		probes = 10
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET ivfflat.probes = %d", probes)); err != nil {
		return nil, fmt.Errorf("set ivfflat probes: %w", err)
	}

	operator := "<=>"
	if p.metric == MetricEuclidean {
		operator = "<->"
	}

	rows, err := conn.Query(ctx, fmt.Sprintf(`
        SELECT id, source, ordinal, content, (embedding %s $1::vector) AS distance
        FROM document_chunks
        ORDER BY embedding %s $1::vector
        LIMIT $2
    `, operator, operator), pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	results := make([]SearchResult, 0, limit)
	for rows.Next() {
		var item SearchResult
		var distance float64
		if scanErr := rows.Scan(&item.ID, &item.Source, &item.Ordinal, &item.Text, &distance); scanErr != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", scanErr)
		}
		if p.metric == MetricCosine {
			item.Score = 1 - distance
		} else {
			item.Score = 1 / (1 + distance)
		}
		results = append(results, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return results, nil
}

func (p *PostgresIndex) DistanceMetric() Metric {
	return p.metric
}

func pgvectorOps(metric Metric) (string, error) {
	switch metric {
	case MetricCosine:
		return "vector_cosine_ops", nil
	case MetricEuclidean:
		return "vector_l2_ops", nil
	default:
		return "", fmt.Errorf("postgres index: unknown distance metric %q", metric)
	}
}

var _ Index = (*PostgresIndex)(nil)
