package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/digistore/internal/server/http/dto"
)

const maxKeyImportBytes = 1 << 20

// InventoryHandler manages key stock and download links.
type InventoryHandler struct {
	facade InventoryFacade
}

// NewInventoryHandler constructs InventoryHandler.
func NewInventoryHandler(facade InventoryFacade) *InventoryHandler {
	return &InventoryHandler{facade: facade}
}

// ImportKeys handles POST /api/admin/products/:id/keys with one key per line.
func (h *InventoryHandler) ImportKeys(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxKeyImportBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request"})
		return
	}
	if len(body) > maxKeyImportBytes {
		c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "key list too large"})
		return
	}

	added, err := h.facade.ImportKeys(c.Request.Context(), productID, string(body))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ImportKeysResponse{Added: added})
}

// DeleteKey handles DELETE /api/admin/keys/:id.
func (h *InventoryHandler) DeleteKey(c *gin.Context) {
	keyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.facade.DeleteKey(c.Request.Context(), keyID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Tokens handles GET /api/admin/tokens.
func (h *InventoryHandler) Tokens(c *gin.Context) {
	tokens, err := h.facade.Tokens(c.Request.Context(), queryLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}

	response := make([]dto.TokenResponse, 0, len(tokens))
	for _, t := range tokens {
		response = append(response, toTokenResponse(t))
	}
	c.JSON(http.StatusOK, response)
}
