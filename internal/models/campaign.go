package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignStatus is the lifecycle state of a bulk-send job.
type CampaignStatus string

const (
	CampaignStatusProcessing CampaignStatus = "processing"
	CampaignStatusCompleted  CampaignStatus = "completed"
)

// Campaign represents one bulk-send job. The dispatcher creates it with
// status "processing" and mutates the counters incrementally after every
// batch, so readers polling mid-run see live progress.
type Campaign struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name            string             `bson:"name" json:"name"`
	Message         string             `bson:"message" json:"message"`
	Sender          string             `bson:"sender" json:"sender"`
	TrackLinks      bool               `bson:"trackLinks" json:"trackLinks"`
	Audiences       []string           `bson:"audiences,omitempty" json:"audiences,omitempty"`
	TotalRecipients int                `bson:"totalRecipients" json:"totalRecipients"`
	SentCount       int                `bson:"sentCount" json:"sentCount"`
	FailedCount     int                `bson:"failedCount" json:"failedCount"`
	Progress        int                `bson:"progress" json:"progress"` // percent of recipients attempted
	Status          CampaignStatus     `bson:"status" json:"status"`
	StartedAt       time.Time          `bson:"startedAt" json:"startedAt"`
	CompletedAt     *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	DurationSeconds float64            `bson:"durationSeconds" json:"durationSeconds"`
	AverageRetries  float64            `bson:"averageRetries" json:"averageRetries"`
	CreatedBy       string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
