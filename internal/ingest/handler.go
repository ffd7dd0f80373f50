package ingest

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"cpl-backend/internal/extract"
	"cpl-backend/internal/shared/server/respond"
	"cpl-backend/internal/shared/util"
	"cpl-backend/internal/vectorstore"
)

const maxUploadSize = 16 << 20 // 16MB

// Handler wires the upload and search endpoints to the pipeline.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches ingestion routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload-to-watsonx", h.upload)
	rg.POST("/search", h.search)
}

type uploadResponse struct {
	Success             bool          `json:"success"`
	DocumentID          string        `json:"document_id"`
	RequestID           *string       `json:"request_id"`
	FileName            string        `json:"filename"`
	DocumentType        string        `json:"document_type"`
	StudentName         string        `json:"student_name"`
	NUID                string        `json:"nuid"`
	RequestType         string        `json:"request_type"`
	TargetCourse        string        `json:"target_course"`
	ChunksCreated       int           `json:"chunks_created"`
	ChunksTruncated     int           `json:"chunks_truncated"`
	ChunkSize           int           `json:"chunk_size"`
	CharactersProcessed int           `json:"characters_processed"`
	MetadataEmbedded    bool          `json:"metadata_embedded"`
	COSKey              *string       `json:"cos_key"`
	Storage             StorageStatus `json:"storage"`
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "no file provided", nil)
		return
	}
	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid filename", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	in := UploadInput{
		FileName:     fileName,
		Data:         data,
		DocumentType: ClassifyDocument(fileName),
		Student: StudentContext{
			StudentName:  c.DefaultPostForm("studentName", "Unknown"),
			NUID:         c.DefaultPostForm("nuid", "N/A"),
			RequestType:  c.DefaultPostForm("requestType", "Not Specified"),
			TargetCourse: c.DefaultPostForm("targetCourse", "Not Specified"),
		},
	}

	result, err := h.Svc.Ingest(c.Request.Context(), in)
	if err != nil {
		var extractErr *extract.ExtractionError
		var embedErr *EmbeddingStoreError
		switch {
		case errors.Is(err, extract.ErrUnsupportedFormat):
			respond.Error(c, http.StatusBadRequest, "unsupported_format", err.Error(), nil)
		case errors.As(err, &extractErr):
			respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", err.Error(), nil)
		case errors.As(err, &embedErr):
			respond.Error(c, http.StatusBadGateway, "embedding_store_error", "vector store write failed", err.Error())
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "upload failed", err.Error())
		}
		return
	}

	c.Set("documentId", result.DocumentID)
	respond.OK(c, uploadResponse{
		Success:             true,
		DocumentID:          result.DocumentID,
		RequestID:           result.RequestID,
		FileName:            result.FileName,
		DocumentType:        result.DocumentType,
		StudentName:         result.Student.StudentName,
		NUID:                result.Student.NUID,
		RequestType:         result.Student.RequestType,
		TargetCourse:        result.Student.TargetCourse,
		ChunksCreated:       result.ChunksCreated,
		ChunksTruncated:     result.ChunksTruncated,
		ChunkSize:           result.ChunkSize,
		CharactersProcessed: result.CharactersProcessed,
		MetadataEmbedded:    true,
		COSKey:              result.COSKey,
		Storage:             result.Storage,
	})
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"topK"`
}

type searchResponse struct {
	Success bool                `json:"success"`
	Query   string              `json:"query"`
	Results []vectorstore.Match `json:"results"`
	Count   int                 `json:"count"`
}

func (h *Handler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Query == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "query is required", nil)
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	matches, err := h.Svc.Search(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "embedding_store_error", "search failed", err.Error())
		return
	}
	if matches == nil {
		matches = []vectorstore.Match{}
	}
	respond.OK(c, searchResponse{
		Success: true,
		Query:   req.Query,
		Results: matches,
		Count:   len(matches),
	})
}
