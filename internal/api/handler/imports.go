package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finflowhq/finflow/internal/service"
)

// ImportHandler triggers feed imports over HTTP.
type ImportHandler struct {
	feedImport *service.FeedImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(feedImport *service.FeedImportService) *ImportHandler {
	return &ImportHandler{feedImport: feedImport}
}

type plaidImportRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	AccountID     string `json:"account_id" binding:"required"`
	PublicToken   string `json:"public_token" binding:"required"`
	FeedAccountID string `json:"plaid_account_id"`
}

// ImportPlaid handles POST /api/v1/imports/plaid.
func (h *ImportHandler) ImportPlaid(c *gin.Context) {
	var req plaidImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	rows, err := h.feedImport.Import(c.Request.Context(), service.FeedImportParams{
		UserID:        strings.TrimSpace(req.UserID),
		AccountID:     strings.TrimSpace(req.AccountID),
		PublicToken:   strings.TrimSpace(req.PublicToken),
		FeedAccountID: strings.TrimSpace(req.FeedAccountID),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"rows_processed": rows,
	})
}
