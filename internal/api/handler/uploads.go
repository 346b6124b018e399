package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/finflowhq/finflow/internal/repository"
)

// UploadHandler exposes upload ingestion state. A failed upload's error
// message is the user-facing signal for a broken import.
type UploadHandler struct {
	uploads *repository.UploadRepository
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploads *repository.UploadRepository) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// GetUpload handles GET /api/v1/uploads/:id.
func (h *UploadHandler) GetUpload(c *gin.Context) {
	upload, err := h.uploads.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Upload not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load upload: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, upload)
}
