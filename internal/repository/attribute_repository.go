package repository

import (
	"context"

	"catalog-sync-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttributeRepositoryInterface is the read-only view of the attribute catalog
type AttributeRepositoryInterface interface {
	ListAttributes(ctx context.Context, tenantID string) ([]models.AttributeDefinition, error)
	GetAttributesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.AttributeDefinition, error)
	GetValuesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.AttributeValue, error)
}

// AttributeRepository reads attribute definitions and values. The catalog is
// externally owned; there is no write path from this service.
type AttributeRepository struct {
	db *gorm.DB
}

// Ensure AttributeRepository implements the interface
var _ AttributeRepositoryInterface = (*AttributeRepository)(nil)

// NewAttributeRepository creates a new attribute repository
func NewAttributeRepository(db *gorm.DB) *AttributeRepository {
	return &AttributeRepository{db: db}
}

// ListAttributes returns the tenant's attribute definitions with their values,
// both in declaration (sequence) order
func (r *AttributeRepository) ListAttributes(ctx context.Context, tenantID string) ([]models.AttributeDefinition, error) {
	var attributes []models.AttributeDefinition
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Order("sequence ASC").
		Find(&attributes).Error
	return attributes, err
}

// GetAttributesByIDs returns the given attribute definitions with values
func (r *AttributeRepository) GetAttributesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.AttributeDefinition, error) {
	if len(ids) == 0 {
		return []models.AttributeDefinition{}, nil
	}
	var attributes []models.AttributeDefinition
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Order("sequence ASC").
		Find(&attributes).Error
	return attributes, err
}

// GetValuesByIDs returns the given attribute values
func (r *AttributeRepository) GetValuesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.AttributeValue, error) {
	if len(ids) == 0 {
		return []models.AttributeValue{}, nil
	}
	var values []models.AttributeValue
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&values).Error
	return values, err
}
