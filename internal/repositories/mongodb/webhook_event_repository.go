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

// WebhookEventRepository implements the repositories.WebhookEventRepository interface
type WebhookEventRepository struct {
	collection *mongo.Collection
}

// NewWebhookEventRepository creates a new WebhookEventRepository
func NewWebhookEventRepository(db *mongo.Database) repositories.WebhookEventRepository {
	return &WebhookEventRepository{
		collection: db.Collection("webhook_events"),
	}
}

// Create stores a raw webhook event
func (r *WebhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) error {
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}
	res, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		event.ID = id
	}
	return nil
}

// MarkProcessed flips the processed flag, the only mutation the collection allows
func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"processed": true}})
	return err
}

// FindUnprocessed lists stored events that never completed processing,
// oldest first, for manual re-drive tooling.
func (r *WebhookEventRepository) FindUnprocessed(ctx context.Context, limit int) ([]models.WebhookEvent, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.M{"receivedAt": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"processed": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.WebhookEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	if events == nil {
		events = []models.WebhookEvent{}
	}

	return events, nil
}
