package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryIndex is a brute-force in-process Index. It backs tests and small
// store-less deployments.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	metric    Metric
	points    []Point
}

func NewMemory() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Ensure(_ context.Context, dimension int, metric Metric) error {
	if metric != MetricCosine && metric != MetricEuclidean {
		return ErrMetricMismatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dimension != 0 {
		// Collection already exists; Ensure must not mutate it.
		return nil
	}
	m.dimension = dimension
	m.metric = metric
	return nil
}

func (m *MemoryIndex) Upsert(_ context.Context, points []Point) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range points {
		if err := validateDimension(m.dimension, len(points[i].Vector)); err != nil {
			return nil, err
		}
	}

	ids := make([]string, len(points))
	staged := make([]Point, len(points))
	for i, p := range points {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		ids[i] = p.ID
		staged[i] = p
	}
	m.points = append(m.points, staged...)

	return ids, nil
}

func (m *MemoryIndex) Search(_ context.Context, vector []float32, limit int) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := validateDimension(m.dimension, len(vector)); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	results := make([]SearchResult, 0, len(m.points))
	for _, p := range m.points {
		results = append(results, SearchResult{
			ID:      p.ID,
			Score:   m.score(vector, p.Vector),
			Text:    p.Text,
			Source:  p.Source,
			Ordinal: p.Ordinal,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemoryIndex) DistanceMetric() Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metric
}

func (m *MemoryIndex) score(a, b []float32) float64 {
	if m.metric == MetricEuclidean {
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return 1 / (1 + math.Sqrt(sum))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ Index = (*MemoryIndex)(nil)
