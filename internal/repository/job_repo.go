package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/finflowhq/finflow/internal/domain"
)

// JobRepository handles processing-job queue operations.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create enqueues a job in queued state.
func (r *JobRepository) Create(ctx context.Context, job *domain.ProcessingJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its ID.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	var job domain.ProcessingJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// List retrieves recent jobs, newest first.
func (r *JobRepository) List(ctx context.Context, limit int) ([]domain.ProcessingJob, error) {
	if limit <= 0 {
		limit = 50
	}
	var jobs []domain.ProcessingJob
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Dequeue atomically claims the next runnable job for lockedBy and returns
// it with status already flipped to processing. Returns (nil, nil) when the
// queue is empty; that is the expected common case, not an error.
//
// The claim is a conditional UPDATE guarded by status = 'queued', so two
// workers racing for the same candidate can both pass the read but only one
// update lands; the loser moves on to the next candidate. No two callers
// ever receive the same job.
func (r *JobRepository) Dequeue(ctx context.Context, lockedBy string) (*domain.ProcessingJob, error) {
	for {
		var job domain.ProcessingJob
		err := r.db.WithContext(ctx).
			Where("status = ?", domain.JobStatusQueued).
			Order("created_at ASC").
			First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		res := r.db.WithContext(ctx).
			Model(&domain.ProcessingJob{}).
			Where("id = ? AND status = ?", job.ID, domain.JobStatusQueued).
			Updates(map[string]interface{}{
				"status":    domain.JobStatusProcessing,
				"locked_by": lockedBy,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			job.Status = domain.JobStatusProcessing
			job.LockedBy = lockedBy
			return &job, nil
		}
		// Another worker claimed this candidate between the read and the
		// update; try the next one.
	}
}

// MarkSucceeded transitions a job to succeeded and clears its error.
func (r *JobRepository) MarkSucceeded(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&domain.ProcessingJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.JobStatusSucceeded,
			"last_error": "",
		}).Error
}

// MarkFailed transitions a job to failed, recording the error verbatim.
func (r *JobRepository) MarkFailed(ctx context.Context, id string, message string) error {
	return r.db.WithContext(ctx).
		Model(&domain.ProcessingJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.JobStatusFailed,
			"last_error": message,
		}).Error
}
