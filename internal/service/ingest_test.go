package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/finflowhq/finflow/internal/domain"
	"github.com/finflowhq/finflow/internal/repository"
)

type ingestFixture struct {
	db           *gorm.DB
	uploads      *repository.UploadRepository
	transactions *repository.TransactionRepository
	storage      *memStorage
	svc          *IngestService
}

func newIngestFixture(t *testing.T) *ingestFixture {
	db := newTestDB(t)
	uploads := repository.NewUploadRepository(db)
	transactions := repository.NewTransactionRepository(db)
	storage := newMemStorage()

	return &ingestFixture{
		db:           db,
		uploads:      uploads,
		transactions: transactions,
		storage:      storage,
		svc:          NewIngestService(uploads, transactions, storage, quietLogger()),
	}
}

func (f *ingestFixture) seedUpload(t *testing.T, fileType domain.FileType, data []byte) *domain.Upload {
	t.Helper()

	upload := &domain.Upload{
		ID:               "up-1",
		UserID:           "user-1",
		AccountID:        "acct-1",
		Bank:             "amex",
		FileType:         fileType,
		StoragePath:      "uploads/user-1/up-1.xlsx",
		OriginalFilename: "statement.xlsx",
		Status:           domain.UploadStatusQueued,
	}
	require.NoError(t, f.uploads.Create(context.Background(), upload))

	if data != nil {
		require.NoError(t, f.storage.Upload(context.Background(), upload.StoragePath, bytes.NewReader(data), int64(len(data)), "application/vnd.ms-excel"))
	}
	return upload
}

func ingestJob(uploadID string) *domain.ProcessingJob {
	return &domain.ProcessingJob{
		ID:      "job-1",
		UserID:  "user-1",
		Type:    domain.JobTypeIngestUpload,
		Payload: domain.JSONMap{"upload_id": uploadID},
		Status:  domain.JobStatusProcessing,
	}
}

func TestHandleJobIngestsStatement(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t)

	data := buildAmexStatement(t, [][]interface{}{
		{"2024-01-05", "Coffee Shop", "4.50", "Blue Bottle"},
		{"2024-01-06", "Grocery Store", "123.45", ""},
	})
	upload := f.seedUpload(t, domain.FileTypeAmex, data)

	rows, err := f.svc.HandleJob(ctx, ingestJob(upload.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	done, err := f.uploads.GetByID(ctx, upload.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UploadStatusSucceeded, done.Status)
	require.NotNil(t, done.RowsProcessed)
	assert.Equal(t, 2, *done.RowsProcessed)

	count, err := f.transactions.CountByAccount(ctx, "user-1", "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestHandleJobRerunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t)

	data := buildAmexStatement(t, [][]interface{}{
		{"2024-01-05", "Coffee Shop", "4.50", ""},
	})
	upload := f.seedUpload(t, domain.FileTypeAmex, data)

	for i := 0; i < 2; i++ {
		rows, err := f.svc.HandleJob(ctx, ingestJob(upload.ID))
		require.NoError(t, err)
		assert.Equal(t, 1, rows)
	}

	count, err := f.transactions.CountByAccount(ctx, "user-1", "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestHandleJobZeroRowsSucceeds(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t)

	data := buildAmexStatement(t, nil)
	upload := f.seedUpload(t, domain.FileTypeAmex, data)

	rows, err := f.svc.HandleJob(ctx, ingestJob(upload.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, rows)

	done, err := f.uploads.GetByID(ctx, upload.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UploadStatusSucceeded, done.Status)
	require.NotNil(t, done.RowsProcessed)
	assert.Equal(t, 0, *done.RowsProcessed)
}

func TestHandleJobUnsupportedFileType(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t)

	upload := f.seedUpload(t, domain.FileType("csv"), []byte("date,description,amount"))

	_, err := f.svc.HandleJob(ctx, ingestJob(upload.ID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file_type: csv")

	failed, getErr := f.uploads.GetByID(ctx, upload.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.UploadStatusFailed, failed.Status)
	assert.Contains(t, failed.Error, "unsupported file_type: csv")
	assert.Nil(t, failed.RowsProcessed)
}

func TestHandleJobMissingObject(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t)

	upload := f.seedUpload(t, domain.FileTypeAmex, nil)

	_, err := f.svc.HandleJob(ctx, ingestJob(upload.ID))
	require.Error(t, err)

	failed, getErr := f.uploads.GetByID(ctx, upload.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.UploadStatusFailed, failed.Status)
	assert.Contains(t, failed.Error, upload.StoragePath)
}

func TestHandleJobCorruptFile(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t)

	upload := f.seedUpload(t, domain.FileTypeAmex, []byte("definitely not a spreadsheet"))

	_, err := f.svc.HandleJob(ctx, ingestJob(upload.ID))
	require.Error(t, err)

	failed, getErr := f.uploads.GetByID(ctx, upload.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.UploadStatusFailed, failed.Status)
	assert.Contains(t, failed.Error, "statement.xlsx")
}

func TestHandleJobMissingUploadID(t *testing.T) {
	f := newIngestFixture(t)

	job := ingestJob("")
	job.Payload = domain.JSONMap{}

	_, err := f.svc.HandleJob(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing upload_id")
}

func TestHandleJobUnknownUpload(t *testing.T) {
	f := newIngestFixture(t)

	_, err := f.svc.HandleJob(context.Background(), ingestJob("no-such-upload"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-upload")
}
