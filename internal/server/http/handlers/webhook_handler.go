package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/digistore/internal/server/http/dto"
)

// TelegramSecretHeader carries the secret registered with setWebhook.
const TelegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler receives chat platform updates.
type WebhookHandler struct {
	facade BotFacade
	secret string
	logger *slog.Logger
}

// NewWebhookHandler constructs WebhookHandler. An empty secret accepts every caller.
func NewWebhookHandler(facade BotFacade, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{facade: facade, secret: secret, logger: logger}
}

// Telegram handles POST /webhook/telegram. Accepted updates are always
// acknowledged so the platform does not redeliver them.
func (h *WebhookHandler) Telegram(c *gin.Context) {
	if h.secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader(TelegramSecretHeader)), []byte(h.secret)) != 1 {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid webhook secret"})
		return
	}

	var update dto.TelegramUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn("malformed telegram update", slog.String("error", err.Error()))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	if err := h.facade.HandleBotUpdate(c.Request.Context(), update.ToModel()); err != nil {
		h.logger.Warn("telegram update handling failed",
			slog.Int64("update_id", update.UpdateID),
			slog.String("error", err.Error()),
		)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
