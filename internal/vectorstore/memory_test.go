package vectorstore

import (
	"context"
	"testing"
)

func TestMemoryStoreSearchRanksByDistance(t *testing.T) {
	s := NewMemoryStore()
	err := s.Insert(context.Background(), []ChunkRecord{
		{PK: "a_0", Content: "far", Vector: []float32{10, 0}},
		{PK: "b_0", Content: "near", Vector: []float32{1, 0}},
		{PK: "c_0", Content: "mid", Vector: []float32{5, 0}},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	matches, err := s.Search(context.Background(), []float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].PK != "b_0" || matches[1].PK != "c_0" {
		t.Fatalf("unexpected order: %s, %s", matches[0].PK, matches[1].PK)
	}
}
