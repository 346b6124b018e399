package domain

import "time"

// FileType tags the statement format of an uploaded file.
type FileType string

const (
	FileTypeAmex FileType = "amex"
)

// UploadStatus mirrors JobStatus for the upload record itself.
type UploadStatus string

const (
	UploadStatusQueued     UploadStatus = "queued"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusSucceeded  UploadStatus = "succeeded"
	UploadStatusFailed     UploadStatus = "failed"
)

// Upload is an accepted bank-statement file waiting to be (or already)
// ingested. The file bytes live in the blob store under StoragePath; the
// record is mutated only by the ingestion job handler after intake.
//
// RowsProcessed stays nil until the upload reaches succeeded; it is set
// exactly once, in the same update as the terminal status transition.
type Upload struct {
	ID               string       `gorm:"type:text;primaryKey" json:"id"`
	UserID           string       `gorm:"type:text;not null;index" json:"user_id"`
	AccountID        string       `gorm:"type:text;not null;index" json:"account_id"`
	Bank             string       `gorm:"type:text" json:"bank"`
	FileType         FileType     `gorm:"type:text;not null" json:"file_type"`
	StoragePath      string       `gorm:"type:text;not null" json:"storage_path"`
	OriginalFilename string       `gorm:"type:text" json:"original_filename"`
	Status           UploadStatus `gorm:"type:text;default:queued" json:"status"`
	RowsProcessed    *int         `json:"rows_processed,omitempty"`
	Error            string       `gorm:"type:text" json:"error,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// TableName returns the database table name for Upload.
func (Upload) TableName() string {
	return "uploads"
}
