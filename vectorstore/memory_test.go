package vectorstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/vectorstore"
)

func newIndex(t *testing.T, metric vectorstore.Metric) *vectorstore.MemoryIndex {
	t.Helper()
	index := vectorstore.NewMemory()
	if err := index.Ensure(context.Background(), 3, metric); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	return index
}

func TestMemoryIndexSearchRanksBySimilarity(t *testing.T) {
	index := newIndex(t, vectorstore.MetricCosine)
	ctx := context.Background()

	ids, err := index.Upsert(ctx, []vectorstore.Point{
		{Vector: []float32{1, 0, 0}, Text: "about vacations", Source: "handbook.pdf", Ordinal: 0},
		{Vector: []float32{0, 1, 0}, Text: "about payroll", Source: "payroll.txt", Ordinal: 0},
		{Vector: []float32{0.9, 0.1, 0}, Text: "more on vacations", Source: "handbook.pdf", Ordinal: 1},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	for _, id := range ids {
		if id == "" {
			t.Fatal("expected every point to receive an id")
		}
	}

	results, err := index.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Text != "about vacations" {
		t.Fatalf("expected the exact match first, got %q", results[0].Text)
	}
	if results[1].Text != "more on vacations" {
		t.Fatalf("expected the near match second, got %q", results[1].Text)
	}
	if results[0].Score < results[1].Score {
		t.Fatal("expected results ordered by descending score")
	}
}

func TestMemoryIndexRejectsDimensionMismatch(t *testing.T) {
	index := newIndex(t, vectorstore.MetricCosine)
	ctx := context.Background()

	_, err := index.Upsert(ctx, []vectorstore.Point{{Vector: []float32{1, 0}}})
	if !errors.Is(err, vectorstore.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch on upsert, got %v", err)
	}

	_, err = index.Search(ctx, []float32{1, 0, 0, 0}, 5)
	if !errors.Is(err, vectorstore.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch on search, got %v", err)
	}
}

func TestMemoryIndexEnsureIsIdempotent(t *testing.T) {
	index := newIndex(t, vectorstore.MetricCosine)

	if err := index.Ensure(context.Background(), 768, vectorstore.MetricEuclidean); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if index.DistanceMetric() != vectorstore.MetricCosine {
		t.Fatal("expected a second Ensure to leave the collection untouched")
	}
}

func TestMemoryIndexRejectsUnknownMetric(t *testing.T) {
	index := vectorstore.NewMemory()
	err := index.Ensure(context.Background(), 3, vectorstore.Metric("manhattan"))
	if !errors.Is(err, vectorstore.ErrMetricMismatch) {
		t.Fatalf("expected ErrMetricMismatch, got %v", err)
	}
}

func TestMemoryIndexEuclideanScoring(t *testing.T) {
	index := newIndex(t, vectorstore.MetricEuclidean)
	ctx := context.Background()

	_, err := index.Upsert(ctx, []vectorstore.Point{
		{Vector: []float32{0, 0, 0}, Text: "origin"},
		{Vector: []float32{3, 4, 0}, Text: "far away"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	results, err := index.Search(ctx, []float32{0, 0, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if results[0].Text != "origin" {
		t.Fatalf("expected the zero-distance point first, got %q", results[0].Text)
	}
	if results[0].Score != 1 {
		t.Fatalf("expected score 1 at zero distance, got %f", results[0].Score)
	}
	// distance 5 scores 1/(1+5)
	if diff := results[1].Score - 1.0/6.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("unexpected score for distant point: %f", results[1].Score)
	}
}

func TestMemoryIndexEmptyCollection(t *testing.T) {
	index := newIndex(t, vectorstore.MetricCosine)

	results, err := index.Search(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results from an empty collection, got %d", len(results))
	}
}
