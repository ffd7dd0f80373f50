package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store for local development and tests. Search
// ranks by L2 distance, matching the hosted collection's metric.
type MemoryStore struct {
	mu      sync.RWMutex
	records []ChunkRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Insert(ctx context.Context, records []ChunkRecord) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

func (m *MemoryStore) Search(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	_ = ctx
	if topK <= 0 {
		topK = 5
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.records))
	for _, r := range m.records {
		matches = append(matches, Match{
			PK:           r.PK,
			DocumentID:   r.DocumentID,
			DocumentName: r.DocumentName,
			DocumentType: r.DocumentType,
			TargetCourse: r.TargetCourse,
			StudentName:  r.StudentName,
			NUID:         r.NUID,
			Content:      r.Content,
			Distance:     l2Distance(vector, r.Vector),
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func l2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

var _ Store = (*MemoryStore)(nil)
