package ingest

import "fmt"

// EmbeddingStoreError aborts the pipeline: if chunks are not searchable the
// upload has no value, so object-storage and metadata writes never run.
type EmbeddingStoreError struct {
	Err error
}

func (e *EmbeddingStoreError) Error() string {
	return fmt.Sprintf("embedding store write failed: %v", e.Err)
}

func (e *EmbeddingStoreError) Unwrap() error { return e.Err }
