package handlers

import (
	"net/http"

	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"catalog-sync-service/internal/variants"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VariantHandler handles attribute catalog and variant expansion endpoints
type VariantHandler struct {
	attrRepo repository.AttributeRepositoryInterface
}

// NewVariantHandler creates a new variant handler
func NewVariantHandler(attrRepo repository.AttributeRepositoryInterface) *VariantHandler {
	return &VariantHandler{attrRepo: attrRepo}
}

// ListAttributes returns the tenant's attribute catalog with values
func (h *VariantHandler) ListAttributes(c *gin.Context) {
	tenantID := c.GetString("tenantId")

	attrs, err := h.attrRepo.ListAttributes(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  attrs,
		"total": len(attrs),
	})
}

// SelectionRequest names one attribute and the value ids picked for it
type SelectionRequest struct {
	AttributeID uuid.UUID   `json:"attributeId" binding:"required"`
	ValueIDs    []uuid.UUID `json:"valueIds"`
}

// CombinationsRequest is the payload for a variant expansion
type CombinationsRequest struct {
	Selections []SelectionRequest `json:"selections" binding:"required"`
}

// Combinations expands the picked attribute values into the full Cartesian
// product of variant combinations
func (h *VariantHandler) Combinations(c *gin.Context) {
	var req CombinationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	selections, err := h.resolveSelections(c, req.Selections)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	combinations := variants.Combine(selections)

	c.JSON(http.StatusOK, gin.H{
		"data":  combinations,
		"total": len(combinations),
	})
}

// ParseRequest is the payload for parsing a variant descriptor back into
// attribute selections
type ParseRequest struct {
	Text string `json:"text" binding:"required"`
}

// Parse resolves a variant descriptor string against the tenant's attribute
// catalog
func (h *VariantHandler) Parse(c *gin.Context) {
	tenantID := c.GetString("tenantId")

	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	catalog, err := h.attrRepo.ListAttributes(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	selections, err := variants.ParseVariantText(catalog, req.Text)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": selections})
}

// resolveSelections loads the referenced attributes and values and rebuilds
// typed selections, rejecting value ids that do not belong to the named
// attribute
func (h *VariantHandler) resolveSelections(c *gin.Context, reqs []SelectionRequest) ([]variants.Selection, error) {
	attrIDs := make([]uuid.UUID, 0, len(reqs))
	var valueIDs []uuid.UUID
	for _, r := range reqs {
		attrIDs = append(attrIDs, r.AttributeID)
		valueIDs = append(valueIDs, r.ValueIDs...)
	}

	attrs, err := h.attrRepo.GetAttributesByIDs(c.Request.Context(), attrIDs)
	if err != nil {
		return nil, err
	}
	attrByID := make(map[uuid.UUID]models.AttributeDefinition, len(attrs))
	for _, a := range attrs {
		attrByID[a.ID] = a
	}

	values, err := h.attrRepo.GetValuesByIDs(c.Request.Context(), valueIDs)
	if err != nil {
		return nil, err
	}
	valueByID := make(map[uuid.UUID]models.AttributeValue, len(values))
	for _, v := range values {
		valueByID[v.ID] = v
	}

	selections := make([]variants.Selection, 0, len(reqs))
	for _, r := range reqs {
		attr, ok := attrByID[r.AttributeID]
		if !ok {
			return nil, &unknownReferenceError{kind: "attribute", id: r.AttributeID}
		}
		sel := variants.Selection{Attribute: attr}
		for _, id := range r.ValueIDs {
			v, ok := valueByID[id]
			if !ok || v.AttributeID != attr.ID {
				return nil, &unknownReferenceError{kind: "attribute value", id: id}
			}
			sel.Values = append(sel.Values, v)
		}
		selections = append(selections, sel)
	}
	return selections, nil
}

type unknownReferenceError struct {
	kind string
	id   uuid.UUID
}

func (e *unknownReferenceError) Error() string {
	return "unknown " + e.kind + ": " + e.id.String()
}
