package mongodb

import (
	"context"
	"time"

	"github.com/braddown/kudosity-platform-sub004/internal/models"
	"github.com/braddown/kudosity-platform-sub004/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CampaignRepository implements the repositories.CampaignRepository interface
type CampaignRepository struct {
	collection *mongo.Collection
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(db *mongo.Database) repositories.CampaignRepository {
	return &CampaignRepository{
		collection: db.Collection("campaigns"),
	}
}

// Create creates a new campaign
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	campaign.CreatedAt = time.Now()
	campaign.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, campaign)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		campaign.ID = id
	}
	return nil
}

// FindByID finds a campaign by ID
func (r *CampaignRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	var campaign models.Campaign

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&campaign)
	if err != nil {
		return nil, err
	}

	return &campaign, nil
}

// FindRecent finds the most recent campaigns, newest first
func (r *CampaignRepository) FindRecent(ctx context.Context, limit int) ([]models.Campaign, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var campaigns []models.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}

	if campaigns == nil {
		campaigns = []models.Campaign{}
	}

	return campaigns, nil
}

// RecordProgress adds batch counts and sets the attempted-percentage in a
// single update so concurrent readers never see the counters go backwards.
func (r *CampaignRepository) RecordProgress(ctx context.Context, id primitive.ObjectID, progress, sentDelta, failedDelta int) error {
	update := bson.M{
		"$inc": bson.M{
			"sentCount":   sentDelta,
			"failedCount": failedDelta,
		},
		"$set": bson.M{
			"progress":  progress,
			"updatedAt": time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// Complete marks a campaign finished with its final figures
func (r *CampaignRepository) Complete(ctx context.Context, id primitive.ObjectID, final repositories.CampaignCompletion) error {
	update := bson.M{
		"$set": bson.M{
			"status":          models.CampaignStatusCompleted,
			"completedAt":     final.CompletedAt,
			"durationSeconds": final.DurationSeconds,
			"averageRetries":  final.AverageRetries,
			"updatedAt":       time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// Count counts all campaigns
func (r *CampaignRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
