package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"cpl-backend/internal/embedding"
	"cpl-backend/internal/extract"
	"cpl-backend/internal/requests"
	"cpl-backend/internal/shared/storage/object"
	"cpl-backend/internal/vectorstore"
)

type failingObjectStore struct{}

func (failingObjectStore) Put(ctx context.Context, key, contentType string, meta object.Metadata, r io.Reader) (int64, error) {
	return 0, errors.New("cos unavailable")
}

func (failingObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, object.Metadata, error) {
	return nil, nil, object.ErrNotFound
}

type memoryObjectStore struct {
	objects map[string][]byte
}

func newMemoryObjectStore() *memoryObjectStore {
	return &memoryObjectStore{objects: map[string][]byte{}}
}

func (m *memoryObjectStore) Put(ctx context.Context, key, contentType string, meta object.Metadata, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.objects[key] = data
	return int64(len(data)), nil
}

func (m *memoryObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, object.Metadata, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, nil, object.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(string(data))), object.Metadata{}, nil
}

type failingVectorStore struct{}

func (failingVectorStore) Insert(ctx context.Context, records []vectorstore.ChunkRecord) error {
	return errors.New("milvus unavailable")
}

func (failingVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	return nil, errors.New("milvus unavailable")
}

type failingRepo struct{ requests.MemoryRepo }

func (f *failingRepo) Insert(ctx context.Context, rec requests.NewRecord) (string, error) {
	return "", errors.New("presto unavailable")
}

func newTestService() (*Service, *memoryObjectStore, *vectorstore.MemoryStore, *requests.MemoryRepo) {
	objects := newMemoryObjectStore()
	vectors := vectorstore.NewMemoryStore()
	repo := requests.NewMemoryRepo()
	svc := &Service{
		Objects:  objects,
		Vectors:  vectors,
		Embedder: embedding.DevEmbedder{Dim: 8},
		Requests: requests.NewService(repo),
		Chunker:  Chunker{Size: 800, Overlap: 150},
		Enricher: Enricher{MaxTokens: 450},
	}
	return svc, objects, vectors, repo
}

func studentInput(fileName, content string) UploadInput {
	return UploadInput{
		FileName:     fileName,
		Data:         []byte(content),
		DocumentType: ClassifyDocument(fileName),
		Student:      testStudent,
	}
}

func TestIngestHappyPath(t *testing.T) {
	svc, objects, _, repo := newTestService()

	result, err := svc.Ingest(context.Background(), studentInput("transcript.txt", strings.Repeat("a", 2000)))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.ChunksCreated != 3 {
		t.Fatalf("chunks = %d, want 3", result.ChunksCreated)
	}
	if result.RequestID == nil || *result.RequestID != "REQ000001" {
		t.Fatalf("request id = %v", result.RequestID)
	}
	if result.COSKey == nil || *result.COSKey != result.DocumentID+"/transcript.txt" {
		t.Fatalf("cos key = %v", result.COSKey)
	}
	if result.Storage.Degraded {
		t.Fatal("unexpected degraded flag")
	}
	if _, ok := objects.objects[*result.COSKey]; !ok {
		t.Fatal("original bytes not stored")
	}
	if _, err := repo.FindLatestByNUID(context.Background(), testStudent.NUID); err != nil {
		t.Fatalf("record not inserted: %v", err)
	}
}

func TestIngestObjectStoreFailureIsSoft(t *testing.T) {
	svc, _, _, repo := newTestService()
	svc.Objects = failingObjectStore{}

	result, err := svc.Ingest(context.Background(), studentInput("transcript.txt", "some content"))
	if err != nil {
		t.Fatalf("Ingest should succeed despite object store failure: %v", err)
	}
	if result.COSKey != nil {
		t.Fatalf("cos key = %v, want nil", result.COSKey)
	}
	if !result.Storage.Degraded {
		t.Fatal("expected degraded flag")
	}
	if !strings.Contains(result.Storage.COS, "failed") {
		t.Fatalf("storage.cos = %q", result.Storage.COS)
	}
	// Metadata write must still run.
	if result.RequestID == nil {
		t.Fatal("metadata write skipped")
	}
	if _, err := repo.FindLatestByNUID(context.Background(), testStudent.NUID); err != nil {
		t.Fatalf("record not inserted: %v", err)
	}
}

func TestIngestMetadataFailureIsSoft(t *testing.T) {
	svc, _, _, _ := newTestService()
	svc.Requests = requests.NewService(&failingRepo{})

	result, err := svc.Ingest(context.Background(), studentInput("transcript.txt", "some content"))
	if err != nil {
		t.Fatalf("Ingest should succeed despite metadata failure: %v", err)
	}
	if result.RequestID != nil {
		t.Fatalf("request id = %v, want nil", result.RequestID)
	}
	if !result.Storage.Degraded {
		t.Fatal("expected degraded flag")
	}
	if result.COSKey == nil {
		t.Fatal("object store write skipped")
	}
}

func TestIngestVectorStoreFailureAborts(t *testing.T) {
	svc, objects, _, repo := newTestService()
	svc.Vectors = failingVectorStore{}

	_, err := svc.Ingest(context.Background(), studentInput("transcript.txt", "some content"))
	var embedErr *EmbeddingStoreError
	if !errors.As(err, &embedErr) {
		t.Fatalf("expected EmbeddingStoreError, got %v", err)
	}
	if len(objects.objects) != 0 {
		t.Fatal("object store written after vector failure")
	}
	if records, _ := repo.List(context.Background()); len(records) != 0 {
		t.Fatal("metadata written after vector failure")
	}
}

func TestIngestExtractionFailureAbortsBeforeWrites(t *testing.T) {
	svc, objects, _, repo := newTestService()

	_, err := svc.Ingest(context.Background(), UploadInput{
		FileName:     "photo.png",
		Data:         []byte("binary"),
		DocumentType: DocTypeStudentSyllabus,
		Student:      testStudent,
	})
	if !errors.Is(err, extract.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if len(objects.objects) != 0 {
		t.Fatal("object store written after extract failure")
	}
	if records, _ := repo.List(context.Background()); len(records) != 0 {
		t.Fatal("metadata written after extract failure")
	}
}

func TestIngestReferenceDocumentSkipsStudentStores(t *testing.T) {
	svc, _, vectors, _ := newTestService()
	svc.Objects = nil
	svc.Requests = nil
	svc.Chunker = Chunker{Size: 1500, Overlap: 150}

	result, err := svc.Ingest(context.Background(), UploadInput{
		FileName:     "PJM5900.txt",
		Data:         []byte(strings.Repeat("c", 2000)),
		DocumentType: DocTypeReferenceSyllabus,
		Student:      StudentContext{TargetCourse: "PJM5900"},
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.COSKey != nil || result.RequestID != nil {
		t.Fatal("reference document should not touch COS or metadata table")
	}
	if result.Storage.Degraded {
		t.Fatal("skipped stores must not mark the upload degraded")
	}
	if result.ChunksCreated != 2 {
		t.Fatalf("chunks = %d, want 2 at size 1500", result.ChunksCreated)
	}

	matches, err := vectors.Search(context.Background(), make([]float32, 8), 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("vector store holds %d chunks", len(matches))
	}
	if matches[0].DocumentType != DocTypeReferenceSyllabus {
		t.Fatalf("document type = %q", matches[0].DocumentType)
	}
}

func TestIngestEnrichedChunksWithinBudget(t *testing.T) {
	svc, _, vectors, _ := newTestService()

	_, err := svc.Ingest(context.Background(), studentInput("syllabus.txt", strings.Repeat("long course description text ", 100)))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	matches, err := vectors.Search(context.Background(), make([]float32, 8), 100)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	budget := (Enricher{MaxTokens: 450}).MaxChars()
	for _, m := range matches {
		if len(m.Content) > budget {
			t.Fatalf("chunk content %d chars exceeds budget %d", len(m.Content), budget)
		}
	}
}
