package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recommendation statuses.
const (
	StatusPending = "pending"
)

// Directions of a recommendation relative to the viewer.
const (
	DirectionReceived = "received"
	DirectionSent     = "sent"
)

// Recommendation records that UserID suggested a listing to
// RecommendedToUserID. FeatureID is the listing's PropertyID.
type Recommendation struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              primitive.ObjectID `bson:"userId" json:"userId"`
	RecommendedToUserID primitive.ObjectID `bson:"recommendedToUserId" json:"recommendedToUserId"`
	FeatureID           string             `bson:"featureId" json:"featureId"`
	Status              string             `bson:"status" json:"status"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
}

// RecommendationEntry is one recommendation as seen by a participant.
type RecommendationEntry struct {
	ID            primitive.ObjectID `json:"id"`
	FeatureID     string             `json:"featureId"`
	RecommendedBy *UserSummary       `json:"recommendedBy,omitempty"`
	RecommendedTo *UserSummary       `json:"recommendedTo,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	Status        string             `json:"status"`
	Type          string             `json:"type"`
}

// RecommendationList groups a user's recommendations by direction.
type RecommendationList struct {
	Message       string                `json:"message"`
	Received      []RecommendationEntry `json:"received"`
	Sent          []RecommendationEntry `json:"sent"`
	TotalReceived int                   `json:"totalReceived"`
	TotalSent     int                   `json:"totalSent"`
}
