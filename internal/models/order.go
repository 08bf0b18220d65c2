package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle status of a purchase order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusCommitted OrderStatus = "COMMITTED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// SyncStatus represents the remote synchronization state of a line item
type SyncStatus string

const (
	SyncStatusPending        SyncStatus = "PENDING"
	SyncStatusPendingNoMatch SyncStatus = "PENDING_NO_MATCH"
	SyncStatusProcessing     SyncStatus = "PROCESSING"
	SyncStatusSuccess        SyncStatus = "SUCCESS"
	SyncStatusFailed         SyncStatus = "FAILED"
)

// syncTransitions is the allowed transition table. SUCCESS is terminal.
var syncTransitions = map[SyncStatus]map[SyncStatus]bool{
	SyncStatusPending: {
		SyncStatusProcessing: true,
	},
	SyncStatusPendingNoMatch: {
		SyncStatusProcessing: true,
	},
	SyncStatusProcessing: {
		SyncStatusPending:        true,
		SyncStatusPendingNoMatch: true,
		SyncStatusSuccess:        true,
		SyncStatusFailed:         true,
	},
	SyncStatusFailed: {
		SyncStatusProcessing: true,
	},
	SyncStatusSuccess: {},
}

// CanTransition reports whether a sync status change is allowed
func CanTransition(from, to SyncStatus) bool {
	if from == to {
		return true
	}
	allowed, ok := syncTransitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}

// IsTerminal reports whether the status needs no further remote work
func (s SyncStatus) IsTerminal() bool {
	return s == SyncStatusSuccess || s == SyncStatusFailed
}

// PurchaseOrder represents a purchase order being assembled in the front end
type PurchaseOrder struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID string    `gorm:"type:varchar(255);not null;index:idx_purchase_orders_tenant" json:"tenantId"`

	Code   string      `gorm:"type:varchar(100);not null" json:"code"`
	Status OrderStatus `gorm:"type:varchar(50);not null;default:'DRAFT'" json:"status"`

	CreatedBy string `gorm:"type:varchar(255)" json:"createdBy,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// Relationships
	Items []PurchaseOrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName specifies the table name for PurchaseOrder
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderItem represents one line of a purchase order. A line either
// references an existing catalog product or a newly generated variant awaiting
// remote creation.
type PurchaseOrderItem struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index:idx_po_items_order" json:"orderId"`

	// Position within the order; also the positional fallback for
	// reconciliation when a variant was submitted without a code.
	Position int `gorm:"not null" json:"position"`

	ProductCode     string `gorm:"type:varchar(100);not null;index:idx_po_items_code" json:"productCode"`
	BaseProductCode string `gorm:"type:varchar(100);not null;index:idx_po_items_base_code" json:"baseProductCode"`
	ProductName     string `gorm:"type:varchar(500);not null" json:"productName"`

	// VariantText is the group-level variant descriptor shared by every
	// combination generated from the same selection, e.g. "(Red | Blue) (S | M)".
	// Empty for non-varianted lines.
	VariantText string `gorm:"type:varchar(1000)" json:"variantText"`

	// AttributeValueIDs are the specific values of this line's combination.
	AttributeValueIDs UUIDSlice `gorm:"type:jsonb;default:'[]'" json:"attributeValueIds,omitempty"`

	Quantity      int     `gorm:"default:1" json:"quantity"`
	PurchasePrice float64 `gorm:"type:decimal(12,2);default:0" json:"purchasePrice"`
	SellingPrice  float64 `gorm:"type:decimal(12,2);default:0" json:"sellingPrice"`

	Images StringSlice `gorm:"type:jsonb;default:'[]'" json:"images,omitempty"`

	RemoteProductID *string    `gorm:"type:varchar(255);index:idx_po_items_remote" json:"remoteProductId,omitempty"`
	SyncStatus      SyncStatus `gorm:"type:varchar(50);not null;default:'PENDING';index:idx_po_items_sync_status" json:"syncStatus"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// Relationships
	Order *PurchaseOrder `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

// TableName specifies the table name for PurchaseOrderItem
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}
