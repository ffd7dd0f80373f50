package ingest

import (
	"fmt"
	"strings"
)

// Enricher composes the metadata header around a chunk's text and enforces
// the embedding model's token ceiling. The budget approximates tokens at
// 0.75 per character.
type Enricher struct {
	MaxTokens int
}

const defaultMaxTokens = 450

// MaxChars is the character budget derived from the token ceiling.
func (e Enricher) MaxChars() int {
	tokens := e.MaxTokens
	if tokens <= 0 {
		tokens = defaultMaxTokens
	}
	return int(float64(tokens) / 0.75)
}

// Enrich returns the enriched chunk text and whether it was truncated to fit
// the budget.
func (e Enricher) Enrich(chunkText, fileName, documentType string, student StudentContext) (string, bool) {
	enriched := fmt.Sprintf(`[DOCUMENT METADATA]
NUID: %s
Student Name: %s
Document Type: %s
Request Type: %s
Target Course: %s
Source File: %s
[END METADATA]

[CONTENT]
%s
[END CONTENT]`,
		student.NUID, student.StudentName, documentType,
		student.RequestType, student.TargetCourse, fileName, chunkText)

	maxChars := e.MaxChars()
	if len(enriched) <= maxChars {
		return enriched, false
	}

	truncated := enriched[:maxChars]
	// Prefer ending on a sentence when one falls in the last fifth of the
	// window; otherwise hard-cut.
	if last := strings.LastIndex(truncated, "."); last > int(float64(maxChars)*0.8) {
		truncated = truncated[:last+1]
	}
	return truncated, true
}
