// Package embedding abstracts text embedding providers.
package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// Embedder converts text inputs into dense vectors. Implementations must
// return one vector per input, in order.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
	Dimension() int
}

// DevEmbedder produces deterministic pseudo-embeddings from input text. It
// stands in for the hosted model in local development and tests; identical
// inputs always map to identical vectors.
type DevEmbedder struct {
	Dim int
}

func (d DevEmbedder) Dimension() int {
	if d.Dim <= 0 {
		return 768
	}
	return d.Dim
}

func (d DevEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	_ = ctx
	dim := d.Dimension()
	out := make([][]float32, 0, len(inputs))
	for _, input := range inputs {
		h := fnv.New64a()
		_, _ = h.Write([]byte(input))
		seed := h.Sum64()
		vec := make([]float32, dim)
		var norm float64
		for i := range vec {
			seed = seed*6364136223846793005 + 1442695040888963407
			v := float64(int64(seed>>11))/float64(1<<52) - 1
			vec[i] = float32(v)
			norm += v * v
		}
		if norm > 0 {
			scale := float32(1 / math.Sqrt(norm))
			for i := range vec {
				vec[i] *= scale
			}
		}
		out = append(out, vec)
	}
	return out, nil
}

var _ Embedder = DevEmbedder{}
