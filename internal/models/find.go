package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FindRequest logs a seeker query for analytics. These records are never
// filtered or expired.
type FindRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Filter       string             `bson:"filter" json:"filter"`
	CurrLocation *GeoPoint          `bson:"curr_location,omitempty" json:"curr_location,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
