// Package vectorstore abstracts the chunk vector index.
package vectorstore

import "context"

// ChunkRecord is one embedded chunk with its denormalized document metadata.
// PK is "{document_id}_{sequence_number}".
type ChunkRecord struct {
	PK             string    `json:"pk"`
	DocumentID     string    `json:"document_id"`
	DocumentName   string    `json:"document_name"`
	DocumentType   string    `json:"document_type"`
	Page           int       `json:"page"`
	StartIndex     int       `json:"start_index"`
	SequenceNumber int       `json:"sequence_number"`
	StudentName    string    `json:"student_name"`
	NUID           string    `json:"nuid"`
	RequestType    string    `json:"request_type"`
	TargetCourse   string    `json:"target_course"`
	Content        string    `json:"content"`
	Vector         []float32 `json:"vector"`
}

// Match is a search hit: the stored record minus its vector, plus distance.
type Match struct {
	PK           string  `json:"pk"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	DocumentType string  `json:"document_type"`
	TargetCourse string  `json:"target_course"`
	StudentName  string  `json:"student_name"`
	NUID         string  `json:"nuid"`
	Content      string  `json:"content"`
	Distance     float64 `json:"distance"`
}

// Store writes and searches chunk vectors.
type Store interface {
	Insert(ctx context.Context, records []ChunkRecord) error
	Search(ctx context.Context, vector []float32, topK int) ([]Match, error)
}
