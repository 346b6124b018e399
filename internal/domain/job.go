package domain

import "time"

// JobType identifies what kind of work a processing job carries.
// ingest_upload is the only implemented variant.
type JobType string

const (
	JobTypeIngestUpload JobType = "ingest_upload"
)

// JobStatus represents the lifecycle state of a processing job.
// Transitions are forward-only: queued -> processing -> succeeded|failed.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
)

// ProcessingJob is one unit of background work. Jobs are created by the
// upload-intake path in queued state, claimed by exactly one worker
// (LockedBy is set while status is processing) and driven to a terminal
// state by that worker. Jobs are never deleted by the pipeline.
type ProcessingJob struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	UserID    string    `gorm:"type:text;not null;index" json:"user_id"`
	Type      JobType   `gorm:"type:text;not null" json:"type"`
	Payload   JSONMap   `gorm:"type:text" json:"payload"`
	Status    JobStatus `gorm:"type:text;default:queued;index" json:"status"`
	LockedBy  string    `gorm:"type:text" json:"locked_by,omitempty"`
	LastError string    `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ProcessingJob.
func (ProcessingJob) TableName() string {
	return "processing_jobs"
}
