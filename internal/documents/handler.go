package documents

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cpl-backend/internal/shared/server/respond"
	"cpl-backend/internal/shared/storage/object"
	"cpl-backend/internal/shared/util"
)

// Handler wires document retrieval endpoints to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches retrieval routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/download-document/:documentID/:filename", h.download)
	rg.GET("/preview-document/:documentID/:filename", h.preview)
	rg.GET("/view-document/:documentID/:filename", h.view)
}

func (h *Handler) download(c *gin.Context) {
	data, fileName, ok := h.fetch(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}

func (h *Handler) preview(c *gin.Context) {
	data, fileName, ok := h.fetch(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+fileName+`"`)
	c.Data(http.StatusOK, mimeByExtension(fileName), data)
}

type viewResponse struct {
	Success    bool            `json:"success"`
	DocumentID string          `json:"document_id"`
	FileName   string          `json:"filename"`
	Size       int             `json:"size"`
	Metadata   object.Metadata `json:"metadata"`
}

func (h *Handler) view(c *gin.Context) {
	documentID, fileName, ok := h.params(c)
	if !ok {
		return
	}
	data, meta, err := h.Svc.Fetch(c.Request.Context(), documentID, fileName)
	if err != nil {
		h.respondFetchError(c, err)
		return
	}
	if meta == nil {
		meta = object.Metadata{}
	}
	respond.OK(c, viewResponse{
		Success:    true,
		DocumentID: documentID,
		FileName:   fileName,
		Size:       len(data),
		Metadata:   meta,
	})
}

func (h *Handler) fetch(c *gin.Context) ([]byte, string, bool) {
	documentID, fileName, ok := h.params(c)
	if !ok {
		return nil, "", false
	}
	data, _, err := h.Svc.Fetch(c.Request.Context(), documentID, fileName)
	if err != nil {
		h.respondFetchError(c, err)
		return nil, "", false
	}
	return data, fileName, true
}

func (h *Handler) params(c *gin.Context) (string, string, bool) {
	documentID := c.Param("documentID")
	fileName, err := util.SanitizeFileName(c.Param("filename"))
	if err != nil || documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document path", nil)
		return "", "", false
	}
	c.Set("documentId", documentID)
	return documentID, fileName, true
}

func (h *Handler) respondFetchError(c *gin.Context, err error) {
	if errors.Is(err, object.ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to retrieve document", err.Error())
}

func mimeByExtension(fileName string) string {
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case strings.HasSuffix(lower, ".doc"):
		return "application/msword"
	default:
		return "application/octet-stream"
	}
}
