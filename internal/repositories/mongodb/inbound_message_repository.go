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

// InboundMessageRepository implements the repositories.InboundMessageRepository interface
type InboundMessageRepository struct {
	collection *mongo.Collection
}

// NewInboundMessageRepository creates a new InboundMessageRepository
func NewInboundMessageRepository(db *mongo.Database) repositories.InboundMessageRepository {
	return &InboundMessageRepository{
		collection: db.Collection("inbound_messages"),
	}
}

// Create stores an inbound reply
func (r *InboundMessageRepository) Create(ctx context.Context, inbound *models.InboundMessage) error {
	inbound.CreatedAt = time.Now()
	if inbound.ReceivedAt.IsZero() {
		inbound.ReceivedAt = inbound.CreatedAt
	}
	res, err := r.collection.InsertOne(ctx, inbound)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		inbound.ID = id
	}
	return nil
}

// FindByMSISDN finds inbound messages from one sender with pagination
func (r *InboundMessageRepository) FindByMSISDN(ctx context.Context, msisdn string, page, limit int) ([]models.InboundMessage, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"receivedAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"msisdn": msisdn}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var inbound []models.InboundMessage
	if err := cursor.All(ctx, &inbound); err != nil {
		return nil, err
	}

	if inbound == nil {
		inbound = []models.InboundMessage{}
	}

	return inbound, nil
}
