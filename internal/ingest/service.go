package ingest

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cpl-backend/internal/embedding"
	"cpl-backend/internal/extract"
	"cpl-backend/internal/requests"
	"cpl-backend/internal/shared/metrics"
	"cpl-backend/internal/shared/storage/object"
	"cpl-backend/internal/shared/telemetry"
	"cpl-backend/internal/shared/util"
	"cpl-backend/internal/vectorstore"
)

// Service sequences the upload pipeline. The vector-store write is
// authoritative: its failure aborts the upload. Object-storage and
// metadata-table failures are downgraded to a degraded response so a
// searchable document is never reported as a hard failure.
type Service struct {
	Objects  object.ObjectStore // nil skips object storage (reference documents)
	Vectors  vectorstore.Store
	Embedder embedding.Embedder
	Requests *requests.Service // nil skips the metadata table (reference documents)
	Chunker  Chunker
	Enricher Enricher
}

// Ingest runs extraction, chunking, enrichment, and the three backend
// writes for one document.
func (s *Service) Ingest(ctx context.Context, in UploadInput) (Result, error) {
	started := time.Now()
	metrics.IncUploadStarted()

	documentID := uuid.NewString()
	telemetry.Info("ingest.received", map[string]any{
		"operation":      "ingest",
		"document_id":    documentID,
		"file_name":      in.FileName,
		"document_type":  in.DocumentType,
		"content_sha256": util.ContentDigest(in.Data),
	})

	text, err := extract.Text(in.Data, in.FileName)
	if err != nil {
		metrics.IncUploadFailed()
		telemetry.Error("ingest.extract.failed", map[string]any{
			"operation":   "extract",
			"document_id": documentID,
			"err":         err.Error(),
		})
		return Result{}, err
	}

	chunks := s.Chunker.Split(text)
	records := make([]vectorstore.ChunkRecord, 0, len(chunks))
	contents := make([]string, 0, len(chunks))
	truncated := 0
	for _, chunk := range chunks {
		enriched, wasTruncated := s.Enricher.Enrich(chunk.Text, in.FileName, in.DocumentType, in.Student)
		if wasTruncated {
			truncated++
		}
		records = append(records, vectorstore.ChunkRecord{
			PK:             fmt.Sprintf("%s_%d", documentID, chunk.Seq),
			DocumentID:     documentID,
			DocumentName:   in.FileName,
			DocumentType:   in.DocumentType,
			Page:           chunk.Seq + 1,
			StartIndex:     chunk.Start,
			SequenceNumber: chunk.Seq,
			StudentName:    in.Student.StudentName,
			NUID:           in.Student.NUID,
			RequestType:    in.Student.RequestType,
			TargetCourse:   in.Student.TargetCourse,
			Content:        enriched,
		})
		contents = append(contents, enriched)
	}
	metrics.AddChunksTruncated(truncated)

	vectors, err := s.Embedder.Embed(ctx, contents)
	if err != nil {
		metrics.IncUploadFailed()
		telemetry.Error("ingest.embed.failed", map[string]any{
			"operation":   "embed",
			"document_id": documentID,
			"err":         err.Error(),
		})
		return Result{}, &EmbeddingStoreError{Err: err}
	}
	if len(vectors) != len(records) {
		metrics.IncUploadFailed()
		return Result{}, &EmbeddingStoreError{
			Err: fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(records)),
		}
	}
	for i := range records {
		records[i].Vector = vectors[i]
	}

	if err := s.Vectors.Insert(ctx, records); err != nil {
		metrics.IncUploadFailed()
		telemetry.Error("ingest.vector_store.failed", map[string]any{
			"operation":   "vector_insert",
			"document_id": documentID,
			"err":         err.Error(),
		})
		return Result{}, &EmbeddingStoreError{Err: err}
	}

	result := Result{
		DocumentID:          documentID,
		FileName:            in.FileName,
		DocumentType:        in.DocumentType,
		Student:             in.Student,
		ChunksCreated:       len(chunks),
		ChunksTruncated:     truncated,
		ChunkSize:           s.Chunker.Size,
		CharactersProcessed: len(text),
		Storage: StorageStatus{
			Milvus: fmt.Sprintf("%d chunks (embedded metadata, token-safe)", len(chunks)),
		},
	}

	result.COSKey, result.Storage.COS = s.storeOriginal(ctx, documentID, in)
	if s.Objects != nil && result.COSKey == nil {
		result.Storage.Degraded = true
	}

	result.RequestID, result.Storage.Iceberg = s.recordRequest(ctx, documentID, in)
	if s.Requests != nil && result.RequestID == nil {
		result.Storage.Degraded = true
	}

	if result.Storage.Degraded {
		metrics.IncUploadDegraded()
	}
	metrics.IncUploadCompleted()
	metrics.ObserveUploadDurationMs(float64(time.Since(started).Milliseconds()))

	telemetry.Info("ingest.completed", map[string]any{
		"operation":        "ingest",
		"document_id":      documentID,
		"chunks":           len(chunks),
		"chunks_truncated": truncated,
		"degraded":         result.Storage.Degraded,
	})
	return result, nil
}

// storeOriginal writes the raw file to object storage. Failure is soft: the
// vector write already succeeded, and searchability matters more than
// original-file retention.
func (s *Service) storeOriginal(ctx context.Context, documentID string, in UploadInput) (*string, string) {
	if s.Objects == nil {
		return nil, "skipped (reference document)"
	}
	key := object.Key(documentID, in.FileName)
	meta := object.Metadata{
		"document-id":   documentID,
		"student-name":  in.Student.StudentName,
		"nuid":          in.Student.NUID,
		"request-type":  in.Student.RequestType,
		"target-course": in.Student.TargetCourse,
		"upload-date":   time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := s.Objects.Put(ctx, key, "", meta, bytes.NewReader(in.Data)); err != nil {
		telemetry.Error("ingest.object_store.failed", map[string]any{
			"operation":   "cos_put",
			"document_id": documentID,
			"key":         key,
			"err":         err.Error(),
		})
		return nil, "COS upload failed"
	}
	return &key, "Original file stored: " + key
}

// recordRequest inserts the Request Record. Failure is soft: the caller gets
// a null request id but the upload still succeeds.
func (s *Service) recordRequest(ctx context.Context, documentID string, in UploadInput) (*string, string) {
	if s.Requests == nil {
		return nil, "skipped (reference document)"
	}
	requestID, err := s.Requests.Repo.Insert(ctx, requests.NewRecord{
		DocumentID:   documentID,
		DocumentName: in.FileName,
		StudentName:  in.Student.StudentName,
		NUID:         in.Student.NUID,
		RequestType:  in.Student.RequestType,
		TargetCourse: in.Student.TargetCourse,
	})
	if err != nil {
		telemetry.Error("ingest.metadata_store.failed", map[string]any{
			"operation":   "metadata_insert",
			"document_id": documentID,
			"err":         err.Error(),
		})
		return nil, "Metadata write failed"
	}
	return &requestID, "Student metadata stored"
}

// Search embeds the query and returns the closest chunks.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]vectorstore.Match, error) {
	vectors, err := s.Embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, &EmbeddingStoreError{Err: err}
	}
	if len(vectors) != 1 {
		return nil, &EmbeddingStoreError{Err: fmt.Errorf("got %d vectors for query", len(vectors))}
	}
	return s.Vectors.Search(ctx, vectors[0], topK)
}
