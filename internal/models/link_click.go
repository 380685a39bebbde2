package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LinkClick is one recorded hit on a tracked link inside a sent message.
// Append-only; the rollup counters on Message are derived from this
// collection.
type LinkClick struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MessageID primitive.ObjectID `bson:"messageId" json:"messageId"`
	URL       string             `bson:"url,omitempty" json:"url,omitempty"`
	ClickedAt time.Time          `bson:"clickedAt" json:"clickedAt"`
	UserAgent string             `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	IP        string             `bson:"ip,omitempty" json:"ip,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
