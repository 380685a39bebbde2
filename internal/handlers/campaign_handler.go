package handlers

import (
	"net/http"
	"strconv"

	"github.com/braddown/kudosity-platform-sub004/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignHandler handles campaign-related requests
type CampaignHandler struct {
	campaignService *services.CampaignService
	dispatchService *services.DispatchService
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaignService *services.CampaignService, dispatchService *services.DispatchService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		dispatchService: dispatchService,
	}
}

// DispatchCampaignRequest is the dispatch request body
type DispatchCampaignRequest struct {
	CampaignName string   `json:"campaignName"`
	Recipients   []string `json:"recipients" binding:"required"`
	Message      string   `json:"message" binding:"required"`
	Sender       string   `json:"sender" binding:"required"`
	TrackLinks   bool     `json:"trackLinks"`
	Audiences    []string `json:"audiences"`
}

// DispatchCampaign runs a bulk send synchronously and returns the final
// stats. The request context carries through the whole run, so a dropped
// client stops the campaign at the next batch boundary.
func (h *CampaignHandler) DispatchCampaign(c *gin.Context) {
	var req DispatchCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, stats, err := h.dispatchService.Dispatch(c.Request.Context(), services.DispatchRequest{
		CampaignName: req.CampaignName,
		Recipients:   req.Recipients,
		Message:      req.Message,
		Sender:       req.Sender,
		TrackLinks:   req.TrackLinks,
		Audiences:    req.Audiences,
		CreatedBy:    userIDFromClaims(c),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"campaignId": campaign.ID.Hex(),
		"stats":      stats,
	})
}

// GetCampaigns lists recent campaigns, or one campaign when ?campaignId= is
// given.
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	if idParam := c.Query("campaignId"); idParam != "" {
		id, err := primitive.ObjectIDFromHex(idParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID"})
			return
		}
		campaign, err := h.campaignService.GetCampaignByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "campaign": campaign})
		return
	}

	limit := intQuery(c, "limit", 0)
	campaigns, err := h.campaignService.GetRecentCampaigns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get campaigns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "campaigns": campaigns})
}

// GetCampaignMessages pages through one campaign's message rows.
func (h *CampaignHandler) GetCampaignMessages(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID"})
		return
	}

	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 50)

	messages, err := h.campaignService.GetCampaignMessages(c.Request.Context(), id, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": messages,
		"page":     page,
		"limit":    limit,
	})
}

// SendSMSRequest is the single-send request body
type SendSMSRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Message   string `json:"message" binding:"required"`
	Sender    string `json:"sender" binding:"required"`
}

// SendSMS sends one ad-hoc message outside any campaign.
func (h *CampaignHandler) SendSMS(c *gin.Context) {
	var req SendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.dispatchService.SendSingle(c.Request.Context(), req.Recipient, req.Message, req.Sender)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

func userIDFromClaims(c *gin.Context) string {
	raw, exists := c.Get("claims")
	if !exists {
		return ""
	}
	claims, ok := raw.(jwt.MapClaims)
	if !ok {
		return ""
	}
	if id, ok := claims["user_id"].(string); ok {
		return id
	}
	return ""
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
