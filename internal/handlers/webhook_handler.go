package handlers

import (
	"net/http"
	"time"

	"github.com/braddown/kudosity-platform-sub004/internal/services"
	"github.com/gin-gonic/gin"
)

// WebhookHandler handles gateway callback requests
type WebhookHandler struct {
	webhookService *services.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// ReceiveWebhook accepts one gateway callback. The contract with the gateway
// is 200 once the raw event is stored; only unreadable JSON or a storage
// failure produce a non-200, both of which the gateway will retry.
func (h *WebhookHandler) ReceiveWebhook(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	result, err := h.webhookService.Ingest(c.Request.Context(), payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"event_type": result.EventType,
		"processed":  result.Processed,
		"message":    "Event received",
	})
}

// WebhookHealth answers gateway endpoint verification probes.
func (h *WebhookHandler) WebhookHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetUnprocessedEvents lists stored events that never completed processing,
// for manual re-drive.
func (h *WebhookHandler) GetUnprocessedEvents(c *gin.Context) {
	limit := intQuery(c, "limit", 50)

	events, err := h.webhookService.Unprocessed(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}
