package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadStatus represents the status of an upload batch
type UploadStatus string

const (
	UploadStatusRunning   UploadStatus = "RUNNING"
	UploadStatusCompleted UploadStatus = "COMPLETED"
	UploadStatusFailed    UploadStatus = "FAILED"
)

// UploadJob records one commit attempt that pushed an order's product groups
// to the remote catalog. One row per batch; the per-group detail is kept in
// GroupResults.
type UploadJob struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderID  uuid.UUID `gorm:"type:uuid;not null;index:idx_upload_jobs_order" json:"orderId"`
	TenantID string    `gorm:"type:varchar(255);not null;index:idx_upload_jobs_tenant" json:"tenantId"`

	Status UploadStatus `gorm:"type:varchar(50);not null;default:'RUNNING';index:idx_upload_jobs_status" json:"status"`

	TotalGroups    int `gorm:"default:0" json:"totalGroups"`
	SucceededCount int `gorm:"default:0" json:"succeededCount"`
	FailedCount    int `gorm:"default:0" json:"failedCount"`

	// GroupResults holds the per-group outcome keyed by base product code:
	// uploaded flag, remote id, matched/missing/unexpected variants, error.
	GroupResults JSONB `gorm:"type:jsonb;default:'{}'" json:"groupResults,omitempty"`

	ErrorMessage string `gorm:"type:text" json:"errorMessage,omitempty"`

	CreatedBy   string     `gorm:"type:varchar(255)" json:"createdBy,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// Relationships
	Order *PurchaseOrder `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Logs  []UploadLog    `gorm:"foreignKey:UploadJobID" json:"logs,omitempty"`
}

// TableName specifies the table name for UploadJob
func (UploadJob) TableName() string {
	return "catalog_upload_jobs"
}

// LogLevel represents the severity level of an upload log entry
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// UploadLog represents a log entry for an upload job
type UploadLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UploadJobID uuid.UUID `gorm:"type:uuid;not null;index:idx_upload_logs_job" json:"uploadJobId"`

	Level   LogLevel `gorm:"type:varchar(20);not null;default:'info';index:idx_upload_logs_level" json:"level"`
	Message string   `gorm:"type:text;not null" json:"message"`
	Data    JSONB    `gorm:"type:jsonb;default:'{}'" json:"data,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for UploadLog
func (UploadLog) TableName() string {
	return "catalog_upload_logs"
}
