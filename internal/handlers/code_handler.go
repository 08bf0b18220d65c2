package handlers

import (
	"errors"
	"net/http"

	"catalog-sync-service/internal/allocator"
	"catalog-sync-service/internal/repository"
	"github.com/gin-gonic/gin"
)

// CodeHandler handles product code proposal and reservation endpoints
type CodeHandler struct {
	allocator *allocator.Allocator
	orderRepo repository.OrderRepositoryInterface
}

// NewCodeHandler creates a new code handler
func NewCodeHandler(alloc *allocator.Allocator, orderRepo repository.OrderRepositoryInterface) *CodeHandler {
	return &CodeHandler{allocator: alloc, orderRepo: orderRepo}
}

// ProposeRequest asks for the next free code derived from a product name.
// When Reserve is set the proposed code is atomically reserved for OwnerID.
type ProposeRequest struct {
	ProductName string `json:"productName" binding:"required"`
	Reserve     bool   `json:"reserve"`
	OwnerID     string `json:"ownerId"`
}

// Propose suggests a product code that collides with neither persisted codes
// nor live reservations
func (h *CodeHandler) Propose(c *gin.Context) {
	tenantID := c.GetString("tenantId")

	var req ProposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Reserve && req.OwnerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerId is required when reserving"})
		return
	}

	scope, err := h.orderRepo.ListProductCodes(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var code string
	if req.Reserve {
		code, err = h.allocator.ProposeAndReserve(c.Request.Context(), req.ProductName, req.OwnerID, scope)
	} else {
		code, err = h.allocator.Propose(c.Request.Context(), req.ProductName, scope)
	}
	if err != nil {
		if errors.Is(err, allocator.ErrNoCodeAvailable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"code":     code,
		"reserved": req.Reserve,
	}})
}

// ReserveRequest claims a specific code for a session
type ReserveRequest struct {
	Code    string `json:"code" binding:"required"`
	OwnerID string `json:"ownerId" binding:"required"`
}

// Reserve claims the given code for the owner, refusing codes held by another
// session
func (h *CodeHandler) Reserve(c *gin.Context) {
	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.allocator.Reserve(c.Request.Context(), req.Code, req.OwnerID); err != nil {
		var conflict *allocator.CodeConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"code": req.Code, "reserved": true}})
}

// ReleaseRequest gives back codes a session no longer needs
type ReleaseRequest struct {
	Codes   []string `json:"codes" binding:"required"`
	OwnerID string   `json:"ownerId" binding:"required"`
}

// Release frees the owner's reservations. Codes not held by the owner are
// skipped silently.
func (h *CodeHandler) Release(c *gin.Context) {
	var req ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.allocator.Release(c.Request.Context(), req.Codes, req.OwnerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"released": len(req.Codes)}})
}
