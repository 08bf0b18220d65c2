package repository

import (
	"context"
	"time"

	"catalog-sync-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadRepositoryInterface persists upload batch records and their logs
type UploadRepositoryInterface interface {
	CreateJob(ctx context.Context, job *models.UploadJob) error
	UpdateJob(ctx context.Context, job *models.UploadJob) error
	GetJobByID(ctx context.Context, id uuid.UUID) (*models.UploadJob, error)
	ListJobsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.UploadJob, error)
	CreateLog(ctx context.Context, log *models.UploadLog) error
	GetJobLogs(ctx context.Context, jobID uuid.UUID, opts LogListOptions) ([]models.UploadLog, error)
}

// LogListOptions contains options for listing upload logs
type LogListOptions struct {
	Level  string
	Limit  int
	Offset int
}

// UploadRepository handles database operations for upload jobs
type UploadRepository struct {
	db *gorm.DB
}

// Ensure UploadRepository implements the interface
var _ UploadRepositoryInterface = (*UploadRepository)(nil)

// NewUploadRepository creates a new upload repository
func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// CreateJob creates a new upload job
func (r *UploadRepository) CreateJob(ctx context.Context, job *models.UploadJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// UpdateJob saves the job's current state, stamping CompletedAt on terminal statuses
func (r *UploadRepository) UpdateJob(ctx context.Context, job *models.UploadJob) error {
	if job.Status != models.UploadStatusRunning && job.CompletedAt == nil {
		now := time.Now()
		job.CompletedAt = &now
	}
	return r.db.WithContext(ctx).Save(job).Error
}

// GetJobByID retrieves an upload job by ID
func (r *UploadRepository) GetJobByID(ctx context.Context, id uuid.UUID) (*models.UploadJob, error) {
	var job models.UploadJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobsByOrder retrieves an order's upload jobs, newest first
func (r *UploadRepository) ListJobsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.UploadJob, error) {
	var jobs []models.UploadJob
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

// CreateLog creates an upload log entry
func (r *UploadRepository) CreateLog(ctx context.Context, log *models.UploadLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetJobLogs retrieves logs for an upload job
func (r *UploadRepository) GetJobLogs(ctx context.Context, jobID uuid.UUID, opts LogListOptions) ([]models.UploadLog, error) {
	var logs []models.UploadLog
	query := r.db.WithContext(ctx).
		Where("upload_job_id = ?", jobID)

	if opts.Level != "" {
		query = query.Where("level = ?", opts.Level)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	err := query.Order("created_at DESC").Find(&logs).Error
	return logs, err
}
