package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reply intents classified from inbound message content.
const (
	IntentOptOut = "OPT_OUT"
	IntentOptIn  = "OPT_IN"
	IntentHelp   = "HELP"
)

// InboundMessage is a reply received from a recipient via the gateway.
type InboundMessage struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MSISDN           string             `bson:"msisdn" json:"msisdn"`
	Content          string             `bson:"content" json:"content"`
	Intent           string             `bson:"intent,omitempty" json:"intent,omitempty"`
	ReplyToMessageID string             `bson:"replyToMessageId,omitempty" json:"replyToMessageId,omitempty"`
	ReceivedAt       time.Time          `bson:"receivedAt" json:"receivedAt"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
