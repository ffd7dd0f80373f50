package ingest

import (
	"strings"
	"unicode"
)

// Chunk is one window of the source text.
type Chunk struct {
	Text  string
	Start int
	Seq   int
}

// Chunker splits text into overlapping windows. Each chunk after the first
// starts Overlap characters before the previous chunk's end. Window ends
// prefer natural boundaries: paragraph break, then sentence break, then
// whitespace, falling back to a hard cut. A boundary is only taken when it
// lies in the second half of the window, so chunks never collapse below half
// the target size.
type Chunker struct {
	Size    int
	Overlap int
}

const (
	defaultChunkSize    = 800
	defaultChunkOverlap = 150
)

// Split returns the ordered chunk sequence for text. Text at or under the
// target size yields a single chunk at offset 0.
func (c Chunker) Split(text string) []Chunk {
	size := c.Size
	if size <= 0 {
		size = defaultChunkSize
	}
	overlap := c.Overlap
	if overlap < 0 || overlap >= size {
		overlap = defaultChunkOverlap
	}

	if len(text) == 0 {
		return nil
	}
	if len(text) <= size {
		return []Chunk{{Text: text, Start: 0, Seq: 0}}
	}

	var chunks []Chunk
	start := 0
	seq := 0
	for {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, Chunk{Text: text[start:], Start: start, Seq: seq})
			break
		}
		cut := snapBoundary(text, start, end)
		chunks = append(chunks, Chunk{Text: text[start:cut], Start: start, Seq: seq})
		seq++

		next := cut - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// snapBoundary moves a window end backward to the nearest natural break,
// provided the break lies past the window midpoint.
func snapBoundary(text string, start, end int) int {
	window := text[start:end]
	min := len(window) / 2

	if i := strings.LastIndex(window, "\n\n"); i > min {
		return start + i + len("\n\n")
	}

	best := -1
	for _, sep := range []string{". ", ".\n", "! ", "!\n", "? ", "?\n"} {
		if i := strings.LastIndex(window, sep); i > best {
			best = i
		}
	}
	if best > min {
		return start + best + 1
	}

	if i := strings.LastIndexFunc(window, unicode.IsSpace); i > min {
		return start + i + 1
	}
	return end
}
