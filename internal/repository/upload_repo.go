package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/finflowhq/finflow/internal/domain"
)

// UploadRepository handles upload lifecycle updates.
type UploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository creates a new UploadRepository.
func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create inserts an upload record (used by the intake path and tests).
func (r *UploadRepository) Create(ctx context.Context, upload *domain.Upload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

// GetByID retrieves an upload by its ID.
func (r *UploadRepository) GetByID(ctx context.Context, id string) (*domain.Upload, error) {
	var upload domain.Upload
	if err := r.db.WithContext(ctx).First(&upload, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

// MarkProcessing flips an upload to processing and clears any previous
// error, the first transition of a fresh ingestion attempt.
func (r *UploadRepository) MarkProcessing(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Upload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": domain.UploadStatusProcessing,
			"error":  "",
		}).Error
}

// MarkSucceeded records the terminal success state. rows_processed is set
// here and only here, in the same update as the status flip.
func (r *UploadRepository) MarkSucceeded(ctx context.Context, id string, rowsProcessed int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Upload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         domain.UploadStatusSucceeded,
			"rows_processed": rowsProcessed,
		}).Error
}

// MarkFailed records the terminal failure state with the error message that
// surfaces to the user.
func (r *UploadRepository) MarkFailed(ctx context.Context, id string, message string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Upload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": domain.UploadStatusFailed,
			"error":  message,
		}).Error
}
