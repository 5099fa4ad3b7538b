// Package mock provides an in-memory vector index for tests.
package mock

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/siherrmann/meetgraph/model"
)

var ErrIndexNotFound = errors.New("index not found")

// Index is an in-memory cosine index. It becomes ready after ReadyAfter
// calls to Ready.
type Index struct {
	mu        sync.Mutex
	name      string
	exists    bool
	dimension int
	records   map[string]model.VectorRecord
	order     []string

	ReadyAfter int
	ReadyCalls int
	Creates    int
	Deletes    int
	Batches    [][]model.VectorRecord

	// UpsertErr fails the upsert with the given batch number, starting at 1.
	UpsertErr   error
	UpsertFailN int
}

func NewIndex(name string) *Index {
	return &Index{name: name, records: map[string]model.VectorRecord{}}
}

// NewExistingIndex returns an index that already exists with dimension.
func NewExistingIndex(name string, dimension int) *Index {
	index := NewIndex(name)
	index.exists = true
	index.dimension = dimension
	return index
}

func (m *Index) Name() string {
	return m.name
}

func (m *Index) Exists(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exists, nil
}

func (m *Index) Create(ctx context.Context, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exists = true
	m.dimension = dimension
	m.Creates++
	return nil
}

func (m *Index) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return ErrIndexNotFound
	}
	m.exists = false
	m.records = map[string]model.VectorRecord{}
	m.order = nil
	m.Deletes++
	return nil
}

func (m *Index) Ready(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadyCalls++
	return m.exists && m.ReadyCalls > m.ReadyAfter, nil
}

func (m *Index) Upsert(ctx context.Context, records []model.VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return ErrIndexNotFound
	}

	batch := append([]model.VectorRecord(nil), records...)
	m.Batches = append(m.Batches, batch)
	if m.UpsertErr != nil && len(m.Batches) == m.UpsertFailN {
		return m.UpsertErr
	}

	for _, record := range records {
		if _, ok := m.records[record.ID]; !ok {
			m.order = append(m.order, record.ID)
		}
		m.records[record.ID] = record
	}
	return nil
}

func (m *Index) Query(ctx context.Context, vector []float32, topK int) ([]model.VectorMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil, ErrIndexNotFound
	}

	matches := make([]model.VectorMatch, 0, len(m.records))
	for _, id := range m.order {
		record := m.records[id]
		matches = append(matches, model.VectorMatch{
			ID:       id,
			Score:    cosine(vector, record.Values),
			Metadata: record.Metadata,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK >= 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *Index) Close() error {
	return nil
}

// Len returns the number of stored records.
func (m *Index) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Dimension returns the dimension the index was created with.
func (m *Index) Dimension() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dimension
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
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
