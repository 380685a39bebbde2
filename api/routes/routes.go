package routes

import (
	"github.com/braddown/kudosity-platform-sub004/internal/config"
	"github.com/braddown/kudosity-platform-sub004/internal/handlers"
	"github.com/braddown/kudosity-platform-sub004/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies carries the initialized handlers into SetupRouter.
type HandlerDependencies struct {
	CampaignHandler *handlers.CampaignHandler
	WebhookHandler  *handlers.WebhookHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes. The webhook endpoints stay open: the gateway does not
	// authenticate, and the GET is its endpoint verification probe.
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})

		webhooks := public.Group("/webhooks")
		{
			webhooks.POST("/sms", deps.WebhookHandler.ReceiveWebhook)
			webhooks.GET("/sms", deps.WebhookHandler.WebhookHealth)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		campaigns := protected.Group("/campaigns")
		{
			campaigns.GET("", deps.CampaignHandler.GetCampaigns)
			campaigns.POST("/dispatch", deps.CampaignHandler.DispatchCampaign)
			campaigns.GET("/:id/messages", deps.CampaignHandler.GetCampaignMessages)
		}

		messages := protected.Group("/messages")
		{
			messages.POST("/send", deps.CampaignHandler.SendSMS)
		}

		events := protected.Group("/webhook-events")
		{
			events.GET("/unprocessed", deps.WebhookHandler.GetUnprocessedEvents)
		}
	}

	return router
}
