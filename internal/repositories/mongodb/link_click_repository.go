package mongodb

import (
	"context"
	"time"

	"github.com/braddown/kudosity-platform-sub004/internal/models"
	"github.com/braddown/kudosity-platform-sub004/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LinkClickRepository implements the repositories.LinkClickRepository interface
type LinkClickRepository struct {
	collection *mongo.Collection
}

// NewLinkClickRepository creates a new LinkClickRepository
func NewLinkClickRepository(db *mongo.Database) repositories.LinkClickRepository {
	return &LinkClickRepository{
		collection: db.Collection("link_clicks"),
	}
}

// Create appends one click row
func (r *LinkClickRepository) Create(ctx context.Context, click *models.LinkClick) error {
	click.CreatedAt = time.Now()
	if click.ClickedAt.IsZero() {
		click.ClickedAt = click.CreatedAt
	}
	res, err := r.collection.InsertOne(ctx, click)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		click.ID = id
	}
	return nil
}

// CountByMessageID counts the stored clicks for one message
func (r *LinkClickRepository) CountByMessageID(ctx context.Context, messageID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"messageId": messageID})
}
