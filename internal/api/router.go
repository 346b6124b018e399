package api

import (
	"github.com/gin-gonic/gin"

	"github.com/finflowhq/finflow/internal/api/handler"
	"github.com/finflowhq/finflow/internal/api/middleware"
	"github.com/finflowhq/finflow/internal/repository"
	"github.com/finflowhq/finflow/internal/service"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(
	jobs *repository.JobRepository,
	uploads *repository.UploadRepository,
	feedImport *service.FeedImportService,
	mode string,
	cors middleware.CORSConfig,
) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler()
	jobHandler := handler.NewJobHandler(jobs)
	uploadHandler := handler.NewUploadHandler(uploads)
	importHandler := handler.NewImportHandler(feedImport)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Queue inspection
		v1.GET("/jobs", jobHandler.ListJobs)
		v1.GET("/jobs/:id", jobHandler.GetJob)

		// Upload status
		v1.GET("/uploads/:id", uploadHandler.GetUpload)

		// Feed import
		v1.POST("/imports/plaid", importHandler.ImportPlaid)
	}

	return r
}
