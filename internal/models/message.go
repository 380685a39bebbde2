package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageStatus is the delivery lifecycle state of an outbound message.
// pending -> sent -> {delivered | failed | bounced}
type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusFailed    MessageStatus = "failed"
	MessageStatusBounced   MessageStatus = "bounced"
)

// Terminal reports whether no further transition is expected from s.
func (s MessageStatus) Terminal() bool {
	return s == MessageStatusDelivered || s == MessageStatusFailed || s == MessageStatusBounced
}

// Message represents one outbound attempt to one recipient. Callbacks only
// carry provider-side references, so the gateway MessageID and the secondary
// MessageRef are the identity used at reconciliation time, not the row id.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MSISDN     string             `bson:"msisdn" json:"msisdn"`
	CampaignID primitive.ObjectID `bson:"campaignId,omitempty" json:"campaignId,omitempty"` // single sends have none
	MessageID  string             `bson:"messageId,omitempty" json:"messageId,omitempty"`   // provider message identifier
	MessageRef string             `bson:"messageRef,omitempty" json:"messageRef,omitempty"`
	Content    string             `bson:"content" json:"content"`
	Status     MessageStatus      `bson:"status" json:"status"`
	Segments   int                `bson:"segments" json:"segments"`
	Cost       float64            `bson:"cost" json:"cost"`
	Attempts   int                `bson:"attempts" json:"attempts"`
	LastError  string             `bson:"lastError,omitempty" json:"lastError,omitempty"`

	SentAt      *time.Time `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	DeliveredAt *time.Time `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	FailedAt    *time.Time `bson:"failedAt,omitempty" json:"failedAt,omitempty"`

	// Click rollup, a derived cache of the link_clicks collection.
	ClickCount     int        `bson:"clickCount" json:"clickCount"`
	FirstClickedAt *time.Time `bson:"firstClickedAt,omitempty" json:"firstClickedAt,omitempty"`
	LastClickedAt  *time.Time `bson:"lastClickedAt,omitempty" json:"lastClickedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
