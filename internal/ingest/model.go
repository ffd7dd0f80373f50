// Package ingest implements the document ingestion pipeline: extraction,
// chunking, metadata enrichment, and the fan-out to the vector store, object
// storage, and the metadata table.
package ingest

// StudentContext travels with every chunk of a student-submitted document.
// All fields are empty for reference documents.
type StudentContext struct {
	StudentName  string
	NUID         string
	RequestType  string
	TargetCourse string
}

// UploadInput is one document entering the pipeline.
type UploadInput struct {
	FileName     string
	Data         []byte
	DocumentType string
	Student      StudentContext
}

// StorageStatus reports the outcome per backend. Degraded is true when any
// non-authoritative write failed but the upload still succeeded.
type StorageStatus struct {
	Milvus   string `json:"milvus"`
	COS      string `json:"cos"`
	Iceberg  string `json:"iceberg"`
	Degraded bool   `json:"degraded"`
}

// Result is the pipeline outcome for a successfully ingested document.
type Result struct {
	DocumentID          string
	RequestID           *string
	FileName            string
	DocumentType        string
	Student             StudentContext
	ChunksCreated       int
	ChunksTruncated     int
	ChunkSize           int
	CharactersProcessed int
	COSKey              *string
	Storage             StorageStatus
}
