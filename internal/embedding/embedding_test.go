package embedding

import (
	"context"
	"testing"
)

func TestDevEmbedderDeterministic(t *testing.T) {
	e := DevEmbedder{Dim: 16}
	a, err := e.Embed(context.Background(), []string{"transcript text"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := e.Embed(context.Background(), []string{"transcript text"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(a) != 1 || len(a[0]) != 16 {
		t.Fatalf("unexpected shape: %d x %d", len(a), len(a[0]))
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}

func TestDevEmbedderDistinctInputs(t *testing.T) {
	e := DevEmbedder{}
	vs, err := e.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vs) != 2 {
		t.Fatalf("got %d vectors", len(vs))
	}
	same := true
	for i := range vs[0] {
		if vs[0][i] != vs[1][i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("distinct inputs produced identical vectors")
	}
}
