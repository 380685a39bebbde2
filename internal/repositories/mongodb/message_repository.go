package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/braddown/kudosity-platform-sub004/internal/models"
	"github.com/braddown/kudosity-platform-sub004/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository implements the repositories.MessageRepository interface
type MessageRepository struct {
	collection *mongo.Collection
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *mongo.Database) repositories.MessageRepository {
	return &MessageRepository{
		collection: db.Collection("messages"),
	}
}

// Create creates a new message
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	message.CreatedAt = time.Now()
	message.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, message)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		message.ID = id
	}
	return nil
}

// Update replaces a message by its row id
func (r *MessageRepository) Update(ctx context.Context, message *models.Message) error {
	message.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": message.ID}, message)
	return err
}

// FindByID finds a message by its row id
func (r *MessageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var message models.Message

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err != nil {
		return nil, err
	}

	return &message, nil
}

// FindByProviderID finds a message by the gateway's message identifier.
// Returns (nil, nil) when no message matches.
func (r *MessageRepository) FindByProviderID(ctx context.Context, providerID string) (*models.Message, error) {
	return r.findOne(ctx, bson.M{"messageId": providerID})
}

// FindByReference finds a message by its secondary reference.
// Returns (nil, nil) when no message matches.
func (r *MessageRepository) FindByReference(ctx context.Context, ref string) (*models.Message, error) {
	return r.findOne(ctx, bson.M{"messageRef": ref})
}

func (r *MessageRepository) findOne(ctx context.Context, filter bson.M) (*models.Message, error) {
	var message models.Message

	err := r.collection.FindOne(ctx, filter).Decode(&message)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &message, nil
}

// FindByCampaignID finds messages for a campaign with pagination
func (r *MessageRepository) FindByCampaignID(ctx context.Context, campaignID primitive.ObjectID, page, limit int) ([]models.Message, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"campaignId": campaignID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	if messages == nil {
		messages = []models.Message{}
	}

	return messages, nil
}

// UpsertByProviderID inserts or refreshes a message keyed by the provider
// message identifier, so a re-sent callback target always resolves to one row.
func (r *MessageRepository) UpsertByProviderID(ctx context.Context, message *models.Message) error {
	now := time.Now()
	set := bson.M{
		"msisdn":    message.MSISDN,
		"content":   message.Content,
		"status":    message.Status,
		"segments":  message.Segments,
		"cost":      message.Cost,
		"attempts":  message.Attempts,
		"updatedAt": now,
	}
	if !message.CampaignID.IsZero() {
		set["campaignId"] = message.CampaignID
	}
	if message.MessageRef != "" {
		set["messageRef"] = message.MessageRef
	}
	if message.SentAt != nil {
		set["sentAt"] = message.SentAt
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now, "clickCount": 0},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"messageId": message.MessageID}, update, opts)
	return err
}

// ApplyStatus applies a partial status update, touching only the fields the
// transition owns.
func (r *MessageRepository) ApplyStatus(ctx context.Context, id primitive.ObjectID, update repositories.MessageStatusUpdate) error {
	set := bson.M{
		"status":    update.Status,
		"updatedAt": time.Now(),
	}
	if update.SentAt != nil {
		set["sentAt"] = update.SentAt
	}
	if update.DeliveredAt != nil {
		set["deliveredAt"] = update.DeliveredAt
	}
	if update.FailedAt != nil {
		set["failedAt"] = update.FailedAt
	}
	if update.LastError != "" {
		set["lastError"] = update.LastError
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// IncrementClicks folds hits into the click rollup in one atomic statement.
// $min seeds firstClickedAt on the first ever hit and leaves it alone after.
func (r *MessageRepository) IncrementClicks(ctx context.Context, id primitive.ObjectID, hits int, clickedAt time.Time) error {
	update := bson.M{
		"$inc": bson.M{"clickCount": hits},
		"$min": bson.M{"firstClickedAt": clickedAt},
		"$set": bson.M{
			"lastClickedAt": clickedAt,
			"updatedAt":     time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
