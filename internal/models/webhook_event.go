package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WebhookEvent is an append-only record of one inbound gateway callback.
// The raw payload is persisted before any interpretation is attempted, so no
// callback is lost even when downstream processing fails. Only the Processed
// flag is ever mutated after insert.
type WebhookEvent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EventType  string             `bson:"eventType" json:"eventType"`
	EventID    string             `bson:"eventId,omitempty" json:"eventId,omitempty"`
	MessageID  string             `bson:"messageId,omitempty" json:"messageId,omitempty"`
	RawPayload bson.M             `bson:"rawPayload" json:"rawPayload"`
	ReceivedAt time.Time          `bson:"receivedAt" json:"receivedAt"`
	Processed  bool               `bson:"processed" json:"processed"`
}
