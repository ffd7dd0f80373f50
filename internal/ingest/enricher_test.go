package ingest

import (
	"strings"
	"testing"
)

var testStudent = StudentContext{
	StudentName:  "Sam Lee",
	NUID:         "N01234567",
	RequestType:  "Credit Transfer",
	TargetCourse: "PJM 5900",
}

func TestEnrichHeaderFields(t *testing.T) {
	e := Enricher{}
	enriched, truncated := e.Enrich("Covered topics include scheduling.", "transcript.pdf", DocTypeTranscript, testStudent)
	if truncated {
		t.Fatal("short chunk should not be truncated")
	}
	for _, want := range []string{
		"[DOCUMENT METADATA]",
		"NUID: N01234567",
		"Student Name: Sam Lee",
		"Document Type: transcript",
		"Request Type: Credit Transfer",
		"Target Course: PJM 5900",
		"Source File: transcript.pdf",
		"[END METADATA]",
		"[CONTENT]",
		"Covered topics include scheduling.",
		"[END CONTENT]",
	} {
		if !strings.Contains(enriched, want) {
			t.Errorf("enriched text missing %q", want)
		}
	}
}

func TestEnrichBudget(t *testing.T) {
	e := Enricher{MaxTokens: 450}
	if got := e.MaxChars(); got != 600 {
		t.Fatalf("MaxChars = %d, want 600", got)
	}

	enriched, truncated := e.Enrich(strings.Repeat("x", 2000), "doc.txt", DocTypeStudentSyllabus, testStudent)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if len(enriched) > 600 {
		t.Fatalf("enriched length %d exceeds budget", len(enriched))
	}
}

func TestEnrichTruncationPrefersSentence(t *testing.T) {
	e := Enricher{MaxTokens: 450}
	// Periods land throughout, so one falls in the last fifth of the window.
	chunk := strings.Repeat("A sentence about prior learning credit. ", 40)
	enriched, truncated := e.Enrich(chunk, "doc.txt", DocTypeStudentSyllabus, testStudent)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if !strings.HasSuffix(enriched, ".") {
		t.Fatalf("expected sentence-boundary cut, got tail %q", enriched[len(enriched)-20:])
	}
}
