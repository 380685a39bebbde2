package repositories

import (
	"context"
	"time"

	"github.com/braddown/kudosity-platform-sub004/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignCompletion carries the final figures written when a dispatch run
// finishes.
type CampaignCompletion struct {
	CompletedAt     time.Time
	DurationSeconds float64
	AverageRetries  float64
}

// CampaignRepository defines the interface for campaign data access
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	FindRecent(ctx context.Context, limit int) ([]models.Campaign, error)
	// RecordProgress atomically adds the batch's sent/failed counts and sets
	// the attempted-percentage, so pollers see consistent mid-run figures.
	RecordProgress(ctx context.Context, id primitive.ObjectID, progress, sentDelta, failedDelta int) error
	Complete(ctx context.Context, id primitive.ObjectID, final CampaignCompletion) error
	Count(ctx context.Context) (int64, error)
}

// MessageStatusUpdate is a partial update applied during reconciliation.
// Nil timestamp fields are left untouched on the stored message.
type MessageStatusUpdate struct {
	Status      models.MessageStatus
	SentAt      *time.Time
	DeliveredAt *time.Time
	FailedAt    *time.Time
	LastError   string
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	Update(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	// FindByProviderID matches the gateway's message identifier.
	FindByProviderID(ctx context.Context, providerID string) (*models.Message, error)
	// FindByReference matches the secondary message reference used by
	// callback shapes that do not carry the provider id.
	FindByReference(ctx context.Context, ref string) (*models.Message, error)
	FindByCampaignID(ctx context.Context, campaignID primitive.ObjectID, page, limit int) ([]models.Message, error)
	// UpsertByProviderID inserts or refreshes the message keyed by the
	// provider message identifier.
	UpsertByProviderID(ctx context.Context, message *models.Message) error
	ApplyStatus(ctx context.Context, id primitive.ObjectID, update MessageStatusUpdate) error
	// IncrementClicks adds hits to the click rollup in a single atomic
	// update: count += hits, firstClickedAt set only when unset,
	// lastClickedAt refreshed.
	IncrementClicks(ctx context.Context, id primitive.ObjectID, hits int, clickedAt time.Time) error
}

// WebhookEventRepository defines the interface for raw webhook event storage
type WebhookEventRepository interface {
	Create(ctx context.Context, event *models.WebhookEvent) error
	MarkProcessed(ctx context.Context, id primitive.ObjectID) error
	FindUnprocessed(ctx context.Context, limit int) ([]models.WebhookEvent, error)
}

// LinkClickRepository defines the interface for link click storage
type LinkClickRepository interface {
	Create(ctx context.Context, click *models.LinkClick) error
	CountByMessageID(ctx context.Context, messageID primitive.ObjectID) (int64, error)
}

// InboundMessageRepository defines the interface for inbound message storage
type InboundMessageRepository interface {
	Create(ctx context.Context, inbound *models.InboundMessage) error
	FindByMSISDN(ctx context.Context, msisdn string, page, limit int) ([]models.InboundMessage, error)
}
