package ingest

import (
	"strings"
	"testing"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	c := Chunker{Size: 800, Overlap: 150}
	chunks := c.Split("short syllabus description")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Start != 0 || chunks[0].Seq != 0 {
		t.Fatalf("chunk = %+v", chunks[0])
	}
}

func TestSplitEmptyText(t *testing.T) {
	c := Chunker{Size: 800, Overlap: 150}
	if chunks := c.Split(""); chunks != nil {
		t.Fatalf("expected nil, got %d chunks", len(chunks))
	}
}

func TestSplit2000CharsBoundaryFree(t *testing.T) {
	// Boundary-free text keeps windows at their nominal positions:
	// stride = 800 - 150 = 650 -> offsets 0, 650, 1300.
	text := strings.Repeat("a", 2000)
	c := Chunker{Size: 800, Overlap: 150}
	chunks := c.Split(text)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	wantStarts := []int{0, 650, 1300}
	for i, chunk := range chunks {
		if chunk.Seq != i {
			t.Errorf("chunk %d seq = %d", i, chunk.Seq)
		}
		if chunk.Start != wantStarts[i] {
			t.Errorf("chunk %d start = %d, want %d", i, chunk.Start, wantStarts[i])
		}
	}
	if len(chunks[0].Text) != 800 || len(chunks[2].Text) != 700 {
		t.Fatalf("chunk lengths = %d, %d, %d", len(chunks[0].Text), len(chunks[1].Text), len(chunks[2].Text))
	}
}

func TestSplitOverlapRegionsMatch(t *testing.T) {
	var b strings.Builder
	for i := 0; b.Len() < 3000; i++ {
		b.WriteString("Course content covers scheduling and risk. ")
	}
	text := b.String()

	c := Chunker{Size: 800, Overlap: 150}
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prevEnd := chunks[i-1].Start + len(chunks[i-1].Text)
		if chunks[i].Start > prevEnd {
			t.Fatalf("chunk %d starts at %d after previous end %d", i, chunks[i].Start, prevEnd)
		}
		// The shared region must read identically from both chunks.
		overlap := prevEnd - chunks[i].Start
		if overlap <= 0 {
			continue
		}
		fromPrev := chunks[i-1].Text[len(chunks[i-1].Text)-overlap:]
		fromNext := chunks[i].Text[:overlap]
		if fromPrev != fromNext {
			t.Fatalf("overlap mismatch at chunk %d: %q vs %q", i, fromPrev, fromNext)
		}
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	sentence := "The program requires a capstone project. "
	text := strings.Repeat(sentence, 50)

	c := Chunker{Size: 800, Overlap: 150}
	chunks := c.Split(text)
	for i, chunk := range chunks[:len(chunks)-1] {
		trimmed := strings.TrimRight(chunk.Text, " \n")
		if !strings.HasSuffix(trimmed, ".") {
			t.Fatalf("chunk %d does not end at a sentence: %q", i, chunk.Text[len(chunk.Text)-20:])
		}
	}
}

func TestSplitReconstructsSource(t *testing.T) {
	text := strings.Repeat("b", 2350)
	c := Chunker{Size: 800, Overlap: 150}
	chunks := c.Split(text)

	covered := 0
	for _, chunk := range chunks {
		if chunk.Start > covered {
			t.Fatalf("gap before offset %d", chunk.Start)
		}
		if end := chunk.Start + len(chunk.Text); end > covered {
			covered = end
		}
		if got := text[chunk.Start : chunk.Start+len(chunk.Text)]; got != chunk.Text {
			t.Fatal("chunk text does not match source slice")
		}
	}
	if covered != len(text) {
		t.Fatalf("covered %d of %d chars", covered, len(text))
	}
}
