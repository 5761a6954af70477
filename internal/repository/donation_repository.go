package repository

import (
	"context"
	"time"

	"github.com/rishmeh/bhookh/internal/models"
	"github.com/rishmeh/bhookh/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DonationRepository handles database operations related to donations.
type DonationRepository struct {
	collection *mongo.Collection
}

// NewDonationRepository creates a new instance of DonationRepository.
func NewDonationRepository(db *mongo.Database) *DonationRepository {
	return &DonationRepository{
		collection: db.Collection("donations"),
	}
}

// Insert stores a new donation and assigns its generated ID.
func (r *DonationRepository) Insert(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	result, err := r.collection.InsertOne(ctx, donation)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert donation")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted donation ID")
		return nil, mongo.ErrNilDocument
	}
	donation.ID = insertedID

	logger.Log.WithField("donation_id", donation.ID.Hex()).Info("Donation created successfully")
	return donation, nil
}

// FindActive fetches donations created at or after the given instant, newest
// first, optionally narrowed by category and drop-off flag.
func (r *DonationRepository) FindActive(ctx context.Context, category string, dropOff *bool, since time.Time) ([]models.Donation, error) {
	filter := bson.M{"createdAt": bson.M{"$gte": since}}
	if category != "" {
		filter["food_cat"] = category
	}
	if dropOff != nil {
		filter["drop_off"] = *dropOff
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch active donations")
		return nil, err
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	for cursor.Next(ctx) {
		var donation models.Donation
		if err := cursor.Decode(&donation); err != nil {
			logger.Log.WithError(err).Error("Failed to decode donation")
			return nil, err
		}
		donations = append(donations, donation)
	}

	logger.Log.WithField("count", len(donations)).Info("Active donations fetched successfully")
	return donations, nil
}

// FindActiveByID fetches a donation by ID, restricted to records created at
// or after the given instant. Returns mongo.ErrNoDocuments when the record is
// absent or already outside the window.
func (r *DonationRepository) FindActiveByID(ctx context.Context, id primitive.ObjectID, since time.Time) (*models.Donation, error) {
	var donation models.Donation

	filter := bson.M{"_id": id, "createdAt": bson.M{"$gte": since}}
	if err := r.collection.FindOne(ctx, filter).Decode(&donation); err != nil {
		logger.Log.WithError(err).WithField("donation_id", id.Hex()).Warn("Failed to find active donation by ID")
		return nil, err
	}

	return &donation, nil
}

// FindAll fetches every donation, including those past the active window.
func (r *DonationRepository) FindAll(ctx context.Context) ([]models.Donation, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch all donations")
		return nil, err
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	for cursor.Next(ctx) {
		var donation models.Donation
		if err := cursor.Decode(&donation); err != nil {
			logger.Log.WithError(err).Error("Failed to decode donation")
			return nil, err
		}
		donations = append(donations, donation)
	}

	return donations, nil
}

// Update applies a $set merge to a donation and returns the updated document.
func (r *DonationRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Donation, error) {
	var donation models.Donation

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&donation)
	if err != nil {
		logger.Log.WithError(err).WithField("donation_id", id.Hex()).Warn("Failed to update donation")
		return nil, err
	}

	logger.Log.WithField("donation_id", id.Hex()).Info("Donation updated successfully")
	return &donation, nil
}

// Delete removes a donation by ID and returns the deleted document.
func (r *DonationRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	var donation models.Donation

	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&donation); err != nil {
		logger.Log.WithError(err).WithField("donation_id", id.Hex()).Warn("Failed to delete donation")
		return nil, err
	}

	logger.Log.WithField("donation_id", id.Hex()).Info("Donation deleted successfully")
	return &donation, nil
}

// DeleteOlderThan removes every donation created before the cutoff. Deleting
// records the TTL index already removed is a no-op.
func (r *DonationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to delete expired donations")
		return 0, err
	}
	return result.DeletedCount, nil
}

// Stats aggregates the whole collection: totals, drop-off split, and
// per-category and per-declared-freshness breakdowns sorted by count.
func (r *DonationRepository) Stats(ctx context.Context) (*models.DonationStats, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to count donations")
		return nil, err
	}

	dropOff, err := r.collection.CountDocuments(ctx, bson.M{"drop_off": true})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to count drop-off donations")
		return nil, err
	}

	pickup, err := r.collection.CountDocuments(ctx, bson.M{"drop_off": false})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to count pickup donations")
		return nil, err
	}

	categories, err := r.countByField(ctx, "$food_cat")
	if err != nil {
		return nil, err
	}

	// Groups by the stored declared value, not the computed bucket.
	freshness, err := r.countByField(ctx, "$food_fresh")
	if err != nil {
		return nil, err
	}

	return &models.DonationStats{
		TotalDonations:     total,
		DropOffAvailable:   dropOff,
		PickupRequired:     pickup,
		CategoryBreakdown:  categories,
		FreshnessBreakdown: freshness,
	}, nil
}

func (r *DonationRepository) countByField(ctx context.Context, field string) ([]models.FieldCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		logger.Log.WithError(err).WithField("field", field).Error("Failed to aggregate donations")
		return nil, err
	}
	defer cursor.Close(ctx)

	var counts []models.FieldCount
	if err := cursor.All(ctx, &counts); err != nil {
		logger.Log.WithError(err).WithField("field", field).Error("Failed to decode aggregation")
		return nil, err
	}
	return counts, nil
}
