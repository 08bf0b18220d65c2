package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"catalog-sync-service/internal/repository"
	"catalog-sync-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadHandler handles order item listing, batch upload, and sync status
// endpoints
type UploadHandler struct {
	uploadService *services.UploadService
	statusTracker *services.StatusTracker
	orderRepo     repository.OrderRepositoryInterface
	uploadRepo    repository.UploadRepositoryInterface
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(
	uploadService *services.UploadService,
	statusTracker *services.StatusTracker,
	orderRepo repository.OrderRepositoryInterface,
	uploadRepo repository.UploadRepositoryInterface,
) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		statusTracker: statusTracker,
		orderRepo:     orderRepo,
		uploadRepo:    uploadRepo,
	}
}

// ListItems returns an order's line items in position order
func (h *UploadHandler) ListItems(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	items, err := h.orderRepo.ListItems(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": len(items),
	})
}

// Upload submits the order's unsynced product groups to the remote catalog
// and returns the per-group summary
func (h *UploadHandler) Upload(c *gin.Context) {
	tenantID := c.GetString("tenantId")
	userID := c.GetString("userId")

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	summary, err := h.uploadService.SubmitBatch(c.Request.Context(), tenantID, orderID, userID)
	if err != nil {
		var verrs services.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": verrs,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// SyncStatus returns the order's live per-status counts plus the flag gating
// destructive order actions while items are still in flight
func (h *UploadHandler) SyncStatus(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	counts, err := h.statusTracker.Poll(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"counts":                    counts,
		"destructiveActionsAllowed": counts.Processing == 0,
	}})
}

// ListJobs returns the order's upload job history, newest first
func (h *UploadHandler) ListJobs(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	jobs, err := h.uploadRepo.ListJobsByOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  jobs,
		"total": len(jobs),
	})
}

// JobLogs returns the log entries of one upload job
func (h *UploadHandler) JobLogs(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.uploadRepo.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload job not found"})
		return
	}
	tenantID := c.GetString("tenantId")
	if job.TenantID != tenantID {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload job not found"})
		return
	}

	opts := repository.LogListOptions{
		Level: c.Query("level"),
	}
	if limit := c.Query("limit"); limit != "" {
		opts.Limit, _ = strconv.Atoi(limit)
	}
	if offset := c.Query("offset"); offset != "" {
		opts.Offset, _ = strconv.Atoi(offset)
	}

	logs, err := h.uploadRepo.GetJobLogs(c.Request.Context(), jobID, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  logs,
		"total": len(logs),
	})
}

func parseOrderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return uuid.Nil, false
	}
	return id, true
}
