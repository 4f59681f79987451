// Package vectorstore persists embedding vectors with their chunk payloads
// and answers nearest-neighbor queries.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
)

type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
)

var (
	ErrDimensionMismatch = errors.New("vectorstore: vector dimension does not match collection")
	ErrMetricMismatch    = errors.New("vectorstore: distance metric does not match collection")
)

// Point is one stored (vector, text, metadata) tuple. ID is assigned at
// store time when empty and returned to the caller as a durable handle.
type Point struct {
	ID      string
	Vector  []float32
	Text    string
	Source  string
	Ordinal int
}

// SearchResult is a single nearest-neighbor match, highest-similarity
// first in the slices returned by Search.
type SearchResult struct {
	ID      string
	Score   float64
	Text    string
	Source  string
	Ordinal int
}

// Index provides vector persistence and similarity search. The distance
// metric is fixed at collection creation; changing it afterwards requires
// a separate collection.
type Index interface {
	// Ensure creates the backing collection if absent. Idempotent: it
	// neither fails nor mutates when a compatible collection exists.
	Ensure(ctx context.Context, dimension int, metric Metric) error
	// Upsert writes all points or none, assigning fresh ids where missing.
	// Returned ids are in input order.
	Upsert(ctx context.Context, points []Point) ([]string, error)
	// Search returns up to limit nearest neighbors; empty when the
	// collection holds no points.
	Search(ctx context.Context, vector []float32, limit int) ([]SearchResult, error)
	// DistanceMetric reports the metric the collection was created with.
	DistanceMetric() Metric
}

func validateDimension(dimension, got int) error {
	if got != dimension {
		return fmt.Errorf("%w: collection expects %d, got %d", ErrDimensionMismatch, dimension, got)
	}
	return nil
}
