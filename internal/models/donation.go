package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lon float64 `bson:"lon" json:"lon"`
}

// Donation is a surplus-food offer posted by a donor. FoodFresh is the value
// declared at submission; read paths replace it with the bucket computed from
// CreatedAt.
type Donation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName  string             `bson:"full_name" json:"full_name"`
	Contact   string             `bson:"contact" json:"contact"`
	FoodCat   string             `bson:"food_cat" json:"food_cat"`
	FoodFresh string             `bson:"food_fresh" json:"food_fresh"`
	FoodDesc  string             `bson:"food_desc,omitempty" json:"food_desc,omitempty"`
	Servings  string             `bson:"servings,omitempty" json:"servings,omitempty"`
	Location  []GeoPoint         `bson:"location" json:"location"`
	DropOff   bool               `bson:"drop_off" json:"drop_off"`
	AddInfo   string             `bson:"add_info,omitempty" json:"add_info,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DonationFilter narrows a listing of active donations. FoodFresh is matched
// against the computed bucket, never against the stored declared value.
type DonationFilter struct {
	FoodCat   string
	FoodFresh string
	DropOff   *bool
}

// FieldCount is one bucket of an aggregation breakdown.
type FieldCount struct {
	Label string `bson:"_id" json:"_id"`
	Count int64  `bson:"count" json:"count"`
}

// DonationStats aggregates the whole donations collection, including records
// past the active window.
type DonationStats struct {
	TotalDonations     int64        `json:"totalDonations"`
	DropOffAvailable   int64        `json:"dropOffAvailable"`
	PickupRequired     int64        `json:"pickupRequired"`
	CategoryBreakdown  []FieldCount `json:"categoryBreakdown"`
	FreshnessBreakdown []FieldCount `json:"freshnessBreakdown"`
}
