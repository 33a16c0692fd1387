package handlers

import (
	"bytes"
	"net/http"

	"github.com/alimgiray/gmash/internal/middleware"
	"github.com/alimgiray/gmash/internal/services"
	"github.com/alimgiray/gmash/pkg/logger"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MashHandler struct {
	mashService   *services.MashService
	exportService *services.ExportService
}

func NewMashHandler(mashService *services.MashService, exportService *services.ExportService) *MashHandler {
	return &MashHandler{
		mashService:   mashService,
		exportService: exportService,
	}
}

// Mash merges the GitHub account gh_name and the Bitbucket account bb_name.
// Upstream failures only zero out fields, so the response is always 200.
func (h *MashHandler) Mash(c *gin.Context) {
	githubName := c.Query("gh_name")
	bitbucketName := c.Query("bb_name")

	summary := h.mashService.Mash(c.Request.Context(), githubName, bitbucketName)

	if c.Query("format") != "xlsx" {
		c.JSON(http.StatusOK, summary)
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.WriteXLSX(summary, &buf); err != nil {
		logger.WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error("Failed to export summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export summary"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="profile.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
