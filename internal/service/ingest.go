package service

import (
	"context"
	"fmt"

	"github.com/finflowhq/finflow/internal/domain"
	"github.com/finflowhq/finflow/internal/logger"
	"github.com/finflowhq/finflow/internal/parser"
	"github.com/finflowhq/finflow/internal/repository"
	"github.com/finflowhq/finflow/internal/storage"
)

// IngestService handles ingest_upload jobs: it drives an Upload through
// queued -> processing -> succeeded|failed, turning the uploaded statement
// file into deduplicated transaction rows.
//
// The processing mark, the heavy work, and the terminal marks are separate
// writes, not one transaction: a worker crash mid-job leaves the upload in
// processing with no automatic reclaim (see Worker.Run).
type IngestService struct {
	uploads      *repository.UploadRepository
	transactions *repository.TransactionRepository
	storage      storage.ObjectStorage
	log          *logger.Logger
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	uploads *repository.UploadRepository,
	transactions *repository.TransactionRepository,
	objectStorage storage.ObjectStorage,
	log *logger.Logger,
) *IngestService {
	return &IngestService{
		uploads:      uploads,
		transactions: transactions,
		storage:      objectStorage,
		log:          log,
	}
}

// HandleJob processes one ingest_upload job and returns the number of rows
// ingested. Any returned error is fatal for the job: the upload is already
// marked failed with the same message, and the caller records it on the job.
// No retry is attempted.
func (s *IngestService) HandleJob(ctx context.Context, job *domain.ProcessingJob) (int, error) {
	uploadID := job.Payload.String("upload_id")
	if uploadID == "" {
		return 0, fmt.Errorf("job payload missing upload_id")
	}

	ctx = logger.SetUploadID(ctx, uploadID)

	upload, err := s.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return 0, fmt.Errorf("failed to load upload %s: %w", uploadID, err)
	}

	rows, err := s.ingest(ctx, upload)
	if err != nil {
		// The upload record is the user-facing failure signal; record the
		// error verbatim before bubbling it up to the job.
		if markErr := s.uploads.MarkFailed(ctx, upload.ID, err.Error()); markErr != nil {
			logger.FromContext(ctx).WithError(markErr).Error("Failed to mark upload failed")
		}
		return 0, err
	}

	return rows, nil
}

// ingest runs the work phase: mark processing, fetch bytes, parse, persist,
// mark succeeded.
func (s *IngestService) ingest(ctx context.Context, upload *domain.Upload) (int, error) {
	if err := s.uploads.MarkProcessing(ctx, upload.ID); err != nil {
		return 0, fmt.Errorf("failed to mark upload processing: %w", err)
	}

	data, err := storage.DownloadBytes(ctx, s.storage, upload.StoragePath)
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", upload.StoragePath, err)
	}

	p, ok := parser.ForFileType(upload.FileType)
	if !ok {
		return 0, fmt.Errorf("unsupported file_type: %s", upload.FileType)
	}

	rows, err := p.Parse(ctx, data, parser.Meta{
		UserID:    upload.UserID,
		AccountID: upload.AccountID,
		Source:    parser.SourceLabel(upload.FileType),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", upload.OriginalFilename, err)
	}

	// Zero parsed rows is a legitimate outcome (statement with nothing
	// importable), not an error; the upsert is simply a no-op.
	if err := s.transactions.UpsertBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to upsert transactions: %w", err)
	}

	if err := s.uploads.MarkSucceeded(ctx, upload.ID, len(rows)); err != nil {
		return 0, fmt.Errorf("failed to mark upload succeeded: %w", err)
	}

	logger.With(logger.Fields{
		logger.FieldCount:  len(rows),
		logger.FieldStatus: string(domain.UploadStatusSucceeded),
	}).Info(ctx, "Upload ingested")

	return len(rows), nil
}
