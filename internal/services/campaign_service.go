package services

import (
	"context"

	"github.com/braddown/kudosity-platform-sub004/internal/models"
	"github.com/braddown/kudosity-platform-sub004/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignService serves the console's read side: campaign lookups, the
// recent-campaigns list the dashboard polls, and per-campaign message pages.
type CampaignService struct {
	campaignRepo repositories.CampaignRepository
	messageRepo  repositories.MessageRepository
	recentLimit  int
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(campaignRepo repositories.CampaignRepository, messageRepo repositories.MessageRepository, recentLimit int) *CampaignService {
	if recentLimit < 1 {
		recentLimit = 20
	}
	return &CampaignService{
		campaignRepo: campaignRepo,
		messageRepo:  messageRepo,
		recentLimit:  recentLimit,
	}
}

// GetCampaignByID gets a campaign by ID
func (s *CampaignService) GetCampaignByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	return s.campaignRepo.FindByID(ctx, id)
}

// GetRecentCampaigns lists the most recently created campaigns, newest first.
func (s *CampaignService) GetRecentCampaigns(ctx context.Context, limit int) ([]models.Campaign, error) {
	if limit < 1 || limit > 100 {
		limit = s.recentLimit
	}
	return s.campaignRepo.FindRecent(ctx, limit)
}

// GetCampaignMessages pages through the message rows of one campaign.
func (s *CampaignService) GetCampaignMessages(ctx context.Context, campaignID primitive.ObjectID, page, limit int) ([]models.Message, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.messageRepo.FindByCampaignID(ctx, campaignID, page, limit)
}

// CountCampaigns returns the total number of campaigns.
func (s *CampaignService) CountCampaigns(ctx context.Context) (int64, error) {
	return s.campaignRepo.Count(ctx)
}
