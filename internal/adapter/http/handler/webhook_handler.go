package handler

import (
	"net/http"

	"funding-platform/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookHandler handles relayed bot updates.
type WebhookHandler struct {
	botSvc ports.BotService
	log    zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(botSvc ports.BotService, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{botSvc: botSvc, log: log}
}

// Receive handles POST /webhook. The relay delivers at-least-once and
// retries on any non-200 status, so this endpoint acknowledges every
// delivery. Processing failures are logged, never surfaced.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var update ports.RelayUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.log.Warn().Err(err).Msg("undecodable relay update")
		c.Status(http.StatusOK)
		return
	}

	if err := h.botSvc.HandleUpdate(c.Request.Context(), update); err != nil {
		h.log.Error().Err(err).Msg("relay update processing failed")
	}

	c.Status(http.StatusOK)
}
