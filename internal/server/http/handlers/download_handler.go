package handlers

import (
	"github.com/gin-gonic/gin"
)

// DownloadHandler streams product files for valid download tokens.
type DownloadHandler struct {
	facade DownloadFacade
}

// NewDownloadHandler constructs DownloadHandler.
func NewDownloadHandler(facade DownloadFacade) *DownloadHandler {
	return &DownloadHandler{facade: facade}
}

// Download handles GET /download/:token.
func (h *DownloadHandler) Download(c *gin.Context) {
	download, err := h.facade.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.FileAttachment(download.Path, download.Name)
}
