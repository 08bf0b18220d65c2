package repository

import (
	"context"
	"fmt"

	"catalog-sync-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncCounts aggregates per-order line item sync states for the status tracker
type SyncCounts struct {
	Processing int `json:"processing"`
	Failed     int `json:"failed"`
	Pending    int `json:"pending"`
	Success    int `json:"success"`
}

// OrderRepositoryInterface is the persistence surface the orchestrator and
// tracker work against
type OrderRepositoryInterface interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]models.PurchaseOrderItem, error)
	ListProductCodes(ctx context.Context, tenantID string) ([]string, error)
	UpdateItemSyncStatus(ctx context.Context, itemID uuid.UUID, status models.SyncStatus) error
	SetItemRemoteProduct(ctx context.Context, itemID uuid.UUID, remoteProductID string) error
	GetSyncCounts(ctx context.Context, orderID uuid.UUID) (*SyncCounts, error)
}

// OrderRepository handles database operations for purchase orders and their
// line items
type OrderRepository struct {
	db *gorm.DB
}

// Ensure OrderRepository implements the interface
var _ OrderRepositoryInterface = (*OrderRepository)(nil)

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetOrder retrieves a purchase order with its items in position order
func (r *OrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListItems retrieves an order's line items in position order
func (r *OrderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]models.PurchaseOrderItem, error) {
	var items []models.PurchaseOrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("position ASC").
		Find(&items).Error
	return items, err
}

// ListProductCodes returns every product code committed on the tenant's line
// items. Used as the scope set for code proposals.
func (r *OrderRepository) ListProductCodes(ctx context.Context, tenantID string) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderItem{}).
		Joins("JOIN purchase_orders ON purchase_orders.id = purchase_order_items.order_id").
		Where("purchase_orders.tenant_id = ?", tenantID).
		Distinct().
		Pluck("purchase_order_items.product_code", &codes).Error
	return codes, err
}

// UpdateItemSyncStatus moves a line item to a new sync status, rejecting
// transitions outside the allowed table
func (r *OrderRepository) UpdateItemSyncStatus(ctx context.Context, itemID uuid.UUID, status models.SyncStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.PurchaseOrderItem
		if err := tx.Select("id", "sync_status").First(&item, "id = ?", itemID).Error; err != nil {
			return err
		}
		if !models.CanTransition(item.SyncStatus, status) {
			return fmt.Errorf("invalid sync status transition %s -> %s for item %s", item.SyncStatus, status, itemID)
		}
		return tx.Model(&models.PurchaseOrderItem{}).
			Where("id = ?", itemID).
			Update("sync_status", status).Error
	})
}

// SetItemRemoteProduct records the remote identifier and marks the item synced
func (r *OrderRepository) SetItemRemoteProduct(ctx context.Context, itemID uuid.UUID, remoteProductID string) error {
	return r.db.WithContext(ctx).
		Model(&models.PurchaseOrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"remote_product_id": remoteProductID,
			"sync_status":       models.SyncStatusSuccess,
		}).Error
}

// GetSyncCounts aggregates the order's items by sync status
func (r *OrderRepository) GetSyncCounts(ctx context.Context, orderID uuid.UUID) (*SyncCounts, error) {
	var rows []struct {
		SyncStatus models.SyncStatus
		Count      int
	}
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderItem{}).
		Select("sync_status, count(*) as count").
		Where("order_id = ?", orderID).
		Group("sync_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := &SyncCounts{}
	for _, row := range rows {
		switch row.SyncStatus {
		case models.SyncStatusProcessing:
			counts.Processing += row.Count
		case models.SyncStatusFailed:
			counts.Failed += row.Count
		case models.SyncStatusPending, models.SyncStatusPendingNoMatch:
			counts.Pending += row.Count
		case models.SyncStatusSuccess:
			counts.Success += row.Count
		}
	}
	return counts, nil
}
