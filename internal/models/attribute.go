package models

import (
	"time"

	"github.com/google/uuid"
)

// AttributeDefinition represents a named axis of product variation (e.g. Color).
// Definitions and their values are owned by the upstream catalog; this service
// only reads them.
type AttributeDefinition struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID string    `gorm:"type:varchar(255);not null;index:idx_attribute_defs_tenant" json:"tenantId"`

	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Code     string `gorm:"type:varchar(100);not null" json:"code"`
	Sequence int    `gorm:"default:0;index:idx_attribute_defs_sequence" json:"sequence"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// Relationships
	Values []AttributeValue `gorm:"foreignKey:AttributeID" json:"values,omitempty"`
}

// TableName specifies the table name for AttributeDefinition
func (AttributeDefinition) TableName() string {
	return "attribute_definitions"
}

// AttributeValue represents one admissible value along an attribute's axis.
type AttributeValue struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AttributeID uuid.UUID `gorm:"type:uuid;not null;index:idx_attribute_values_attr" json:"attributeId"`

	Name       string   `gorm:"type:varchar(255);not null" json:"name"`
	Code       string   `gorm:"type:varchar(100);not null" json:"code"`
	Sequence   int      `gorm:"default:0" json:"sequence"`
	PriceExtra *float64 `gorm:"type:decimal(12,2)" json:"priceExtra,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// Relationships
	Attribute *AttributeDefinition `gorm:"foreignKey:AttributeID" json:"attribute,omitempty"`
}

// TableName specifies the table name for AttributeValue
func (AttributeValue) TableName() string {
	return "attribute_values"
}
