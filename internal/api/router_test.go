package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/finflowhq/finflow/internal/api/middleware"
	"github.com/finflowhq/finflow/internal/domain"
	"github.com/finflowhq/finflow/internal/feed"
	"github.com/finflowhq/finflow/internal/logger"
	"github.com/finflowhq/finflow/internal/repository"
	"github.com/finflowhq/finflow/internal/service"
)

type stubFeedClient struct {
	accounts     []feed.Account
	transactions []feed.Transaction
}

func (c *stubFeedClient) ExchangePublicToken(ctx context.Context, publicToken string) (string, error) {
	return "access-token", nil
}

func (c *stubFeedClient) GetAccounts(ctx context.Context, accessToken string) ([]feed.Account, error) {
	return c.accounts, nil
}

func (c *stubFeedClient) FetchAllTransactions(ctx context.Context, accessToken string, accountIDs []string, startDate, endDate string) ([]feed.Transaction, error) {
	return c.transactions, nil
}

type routerFixture struct {
	router  *gin.Engine
	jobs    *repository.JobRepository
	uploads *repository.UploadRepository
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(db))

	logger.SetDefaultLogger(logger.New(&logger.Config{Level: "error", Output: io.Discard}))

	jobs := repository.NewJobRepository(db)
	uploads := repository.NewUploadRepository(db)
	transactions := repository.NewTransactionRepository(db)

	client := &stubFeedClient{
		accounts: []feed.Account{{AccountID: "plaid-a1"}},
		transactions: []feed.Transaction{
			{TransactionID: "tx-1", Name: "Coffee Shop", Amount: 4.5, Date: "2024-01-05"},
		},
	}
	feedImport := service.NewFeedImportService(client, transactions, logger.GetDefault())

	router := SetupRouter(jobs, uploads, feedImport, "test", middleware.CORSConfig{AllowAllOrigins: true})
	return &routerFixture{router: router, jobs: jobs, uploads: uploads}
}

func (f *routerFixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestListJobsEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/api/v1/jobs", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Jobs  []domain.ProcessingJob `json:"jobs"`
		Count int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)

	require.NoError(t, f.jobs.Create(context.Background(), &domain.ProcessingJob{
		ID:     "job-1",
		UserID: "user-1",
		Type:   domain.JobTypeIngestUpload,
		Status: domain.JobStatusQueued,
	}))

	w = f.do(http.MethodGet, "/api/v1/jobs", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "job-1", resp.Jobs[0].ID)
}

func TestGetJobEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/api/v1/jobs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, f.jobs.Create(context.Background(), &domain.ProcessingJob{
		ID:     "job-1",
		UserID: "user-1",
		Type:   domain.JobTypeIngestUpload,
		Status: domain.JobStatusFailed,
	}))

	w = f.do(http.MethodGet, "/api/v1/jobs/job-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var job domain.ProcessingJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, domain.JobStatusFailed, job.Status)
}

func TestGetUploadEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/api/v1/uploads/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, f.uploads.Create(context.Background(), &domain.Upload{
		ID:          "up-1",
		UserID:      "user-1",
		AccountID:   "acct-1",
		FileType:    domain.FileTypeAmex,
		StoragePath: "uploads/user-1/up-1.xlsx",
		Status:      domain.UploadStatusQueued,
	}))

	w = f.do(http.MethodGet, "/api/v1/uploads/up-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var upload domain.Upload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upload))
	assert.Equal(t, domain.UploadStatusQueued, upload.Status)
	assert.Nil(t, upload.RowsProcessed)
}

func TestImportPlaidEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/api/v1/imports/plaid", map[string]string{
		"user_id": "user-1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/v1/imports/plaid", map[string]string{
		"user_id":      "user-1",
		"account_id":   "acct-1",
		"public_token": "public-123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK            bool `json:"ok"`
		RowsProcessed int  `json:"rows_processed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, 1, resp.RowsProcessed)
}
