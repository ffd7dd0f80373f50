package requests

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cpl-backend/internal/shared/server/respond"
	"cpl-backend/internal/shared/storage/presto"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the advisor-facing routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/get-requests", h.list)
	rg.PUT("/update-status", h.updateStatus)
}

// RegisterQueryRoutes attaches the student-lookup route used by the
// companion query service.
func (h *Handler) RegisterQueryRoutes(r gin.IRoutes) {
	r.POST("/query-student", h.queryStudent)
}

type listResponse struct {
	Success  bool        `json:"success"`
	Requests []RecordDTO `json:"requests"`
	Count    int         `json:"count"`
	Source   string      `json:"source"`
}

func (h *Handler) list(c *gin.Context) {
	records, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, err, "failed to list requests")
		return
	}
	respond.OK(c, listResponse{
		Success:  true,
		Requests: toDTOs(records),
		Count:    len(records),
		Source:   h.Svc.Repo.Source(),
	})
}

type updateStatusRequest struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	Credits   *int   `json:"credits"`
	Notes     string `json:"notes"`
	UpdatedBy string `json:"updatedBy"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.RequestID) == "" || strings.TrimSpace(req.Status) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "requestId and status are required", nil)
		return
	}

	err := h.Svc.UpdateStatus(c.Request.Context(), StatusUpdate{
		RequestID: req.RequestID,
		Status:    req.Status,
		Credits:   req.Credits,
		Notes:     req.Notes,
		UpdatedBy: req.UpdatedBy,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no request matches requestId", nil)
			return
		}
		h.respondStoreError(c, err, "failed to update status")
		return
	}
	respond.OK(c, gin.H{"success": true})
}

type queryStudentRequest struct {
	NUID string `json:"nuid"`
}

func (h *Handler) queryStudent(c *gin.Context) {
	var req queryStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.NUID) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "nuid is required", nil)
		return
	}

	summary, err := h.Svc.LookupStudent(c.Request.Context(), req.NUID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no request found for nuid", nil)
			return
		}
		h.respondStoreError(c, err, "student lookup failed")
		return
	}
	respond.OK(c, summary)
}

func (h *Handler) respondStoreError(c *gin.Context, err error, message string) {
	var connErr *presto.ConnectionError
	if errors.As(err, &connErr) {
		respond.Error(c, http.StatusBadGateway, "upstream_error", message, err.Error())
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", message, err.Error())
}
