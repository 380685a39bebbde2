package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/braddown/kudosity-platform-sub004/api/routes"
	"github.com/braddown/kudosity-platform-sub004/internal/config"
	"github.com/braddown/kudosity-platform-sub004/internal/handlers"
	"github.com/braddown/kudosity-platform-sub004/internal/repositories"
	mongorepo "github.com/braddown/kudosity-platform-sub004/internal/repositories/mongodb"
	"github.com/braddown/kudosity-platform-sub004/internal/services"
	"github.com/braddown/kudosity-platform-sub004/pkg/mongodb"
	"github.com/braddown/kudosity-platform-sub004/pkg/smsgateway"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	var campaignRepo repositories.CampaignRepository = mongorepo.NewCampaignRepository(db)
	var messageRepo repositories.MessageRepository = mongorepo.NewMessageRepository(db)
	var eventRepo repositories.WebhookEventRepository = mongorepo.NewWebhookEventRepository(db)
	var clickRepo repositories.LinkClickRepository = mongorepo.NewLinkClickRepository(db)
	var inboundRepo repositories.InboundMessageRepository = mongorepo.NewInboundMessageRepository(db)

	var gateway smsgateway.Gateway
	if cfg.Gateway.Mock {
		log.Println("Using mock SMS gateway")
		gateway = smsgateway.NewMockGateway("KUDOSITY")
	} else {
		gateway = smsgateway.NewHTTPGateway(cfg)
	}

	dispatchService := services.NewDispatchService(campaignRepo, messageRepo, gateway, cfg)
	campaignService := services.NewCampaignService(campaignRepo, messageRepo, cfg.Dispatch.RecentLimit)
	reconciler := services.NewReconciler(messageRepo, inboundRepo, clickRepo)
	webhookService := services.NewWebhookService(eventRepo, reconciler)

	handlerDeps := routes.HandlerDependencies{
		CampaignHandler: handlers.NewCampaignHandler(campaignService, dispatchService),
		WebhookHandler:  handlers.NewWebhookHandler(webhookService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
