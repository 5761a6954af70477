package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rishmeh/bhookh/internal/freshness"
	"github.com/rishmeh/bhookh/internal/models"
	"github.com/rishmeh/bhookh/pkg/geo"
	"github.com/rishmeh/bhookh/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// defaultContact is stored when a donor submits no contact number.
const defaultContact = "9999999999"

// defaultMaxDistanceKm bounds a proximity search when the caller gives no radius.
const defaultMaxDistanceKm = 10

// DonationStore is the persistence surface the donation service depends on.
// Implemented by repository.DonationRepository.
type DonationStore interface {
	Insert(ctx context.Context, donation *models.Donation) (*models.Donation, error)
	FindActive(ctx context.Context, category string, dropOff *bool, since time.Time) ([]models.Donation, error)
	FindActiveByID(ctx context.Context, id primitive.ObjectID, since time.Time) (*models.Donation, error)
	FindAll(ctx context.Context) ([]models.Donation, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Donation, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Donation, error)
	Stats(ctx context.Context) (*models.DonationStats, error)
}

// DonationService encapsulates the business logic for donations.
type DonationService struct {
	store DonationStore
	now   func() time.Time
}

// NewDonationService creates a new instance of DonationService.
func NewDonationService(store DonationStore) *DonationService {
	return &DonationService{
		store: store,
		now:   time.Now,
	}
}

// CreateDonation validates and stores a new donation. Donor name, food
// category and declared freshness are required; the declared freshness stays
// required at write time even though reads overwrite it with the computed
// bucket.
func (s *DonationService) CreateDonation(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	if donation.FullName == "" || donation.FoodCat == "" || donation.FoodFresh == "" {
		logger.Log.Warn("Donation submission missing required fields")
		return nil, fmt.Errorf("%w: full_name, food_cat and food_fresh are required", ErrValidation)
	}

	if donation.Contact == "" {
		donation.Contact = defaultContact
	}
	if donation.Location == nil {
		donation.Location = []models.GeoPoint{}
	}

	donation.ID = primitive.NilObjectID
	donation.CreatedAt = s.now()
	donation.UpdatedAt = donation.CreatedAt

	created, err := s.store.Insert(ctx, donation)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to create donation")
		return nil, fmt.Errorf("%w: create donation: %v", ErrStore, err)
	}

	return created, nil
}

// ListActive returns donations inside the 24h window, newest first, with each
// record's freshness replaced by the computed bucket.
func (s *DonationService) ListActive(ctx context.Context, filter models.DonationFilter) ([]models.Donation, error) {
	since := s.now().Add(-freshness.ActiveWindow)

	donations, err := s.store.FindActive(ctx, filter.FoodCat, filter.DropOff, since)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch active donations")
		return nil, fmt.Errorf("%w: list donations: %v", ErrStore, err)
	}

	active := make([]models.Donation, 0, len(donations))
	for _, donation := range donations {
		// The store filter and this classification read the clock at
		// different instants; a record can age out in between, so the
		// computed bucket is checked again here.
		bucket := freshness.Classify(donation.CreatedAt, s.now())
		if bucket == freshness.BucketExpired {
			continue
		}
		donation.FoodFresh = bucket

		// The freshness filter applies to the computed bucket only.
		if filter.FoodFresh != "" && bucket != filter.FoodFresh {
			continue
		}
		active = append(active, donation)
	}

	logger.Log.WithField("count", len(active)).Info("Active donations listed")
	return active, nil
}

// GetDonation returns a single donation inside the active window, with the
// computed freshness substituted.
func (s *DonationService) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("donation_id", id).Warn("Invalid donation ID")
		return nil, fmt.Errorf("%w: invalid donation ID %q", ErrNotFound, id)
	}

	since := s.now().Add(-freshness.ActiveWindow)
	donation, err := s.store.FindActiveByID(ctx, objID, since)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: donation %s", ErrNotFound, id)
		}
		logger.Log.WithError(err).WithField("donation_id", id).Error("Failed to get donation")
		return nil, fmt.Errorf("%w: get donation: %v", ErrStore, err)
	}

	donation.FoodFresh = freshness.Classify(donation.CreatedAt, s.now())
	return donation, nil
}

// UpdateDonation merges the given fields into a donation. The active-window
// check is deliberately skipped so an otherwise-suppressed record can still be
// corrected by ID.
func (s *DonationService) UpdateDonation(ctx context.Context, id string, fields map[string]interface{}) (*models.Donation, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("donation_id", id).Warn("Invalid donation ID")
		return nil, fmt.Errorf("%w: invalid donation ID %q", ErrNotFound, id)
	}

	update := bson.M{}
	for key, value := range fields {
		update[key] = value
	}
	// ID and creation time are immutable; creation time is the sole basis
	// for freshness and expiry.
	delete(update, "_id")
	delete(update, "id")
	delete(update, "createdAt")
	update["updatedAt"] = s.now()

	donation, err := s.store.Update(ctx, objID, update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: donation %s", ErrNotFound, id)
		}
		logger.Log.WithError(err).WithField("donation_id", id).Error("Failed to update donation")
		return nil, fmt.Errorf("%w: update donation: %v", ErrStore, err)
	}

	return donation, nil
}

// DeleteDonation removes a donation and returns the deleted record. A second
// delete of the same ID reports NotFound.
func (s *DonationService) DeleteDonation(ctx context.Context, id string) (*models.Donation, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("donation_id", id).Warn("Invalid donation ID")
		return nil, fmt.Errorf("%w: invalid donation ID %q", ErrNotFound, id)
	}

	donation, err := s.store.Delete(ctx, objID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: donation %s", ErrNotFound, id)
		}
		logger.Log.WithError(err).WithField("donation_id", id).Error("Failed to delete donation")
		return nil, fmt.Errorf("%w: delete donation: %v", ErrStore, err)
	}

	return donation, nil
}

// Nearby returns donations whose first stored location lies within
// maxDistanceKm of the query point. Both coordinates are required; zero is a
// valid coordinate. Results cover the whole collection, including records
// past the active window, and carry no distance ordering.
func (s *DonationService) Nearby(ctx context.Context, lat, lon *float64, maxDistanceKm *float64) ([]models.Donation, float64, error) {
	if lat == nil || lon == nil {
		logger.Log.Warn("Nearby search missing coordinates")
		return nil, 0, fmt.Errorf("%w: lat and lon are required", ErrValidation)
	}

	maxKm := float64(defaultMaxDistanceKm)
	if maxDistanceKm != nil {
		maxKm = *maxDistanceKm
	}

	donations, err := s.store.FindAll(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch donations for nearby search")
		return nil, 0, fmt.Errorf("%w: nearby search: %v", ErrStore, err)
	}

	nearby := make([]models.Donation, 0, len(donations))
	for _, donation := range donations {
		if len(donation.Location) == 0 {
			continue
		}
		// Only the first location is used when several exist.
		point := donation.Location[0]
		if geo.Haversine(*lat, *lon, point.Lat, point.Lon) <= maxKm {
			nearby = append(nearby, donation)
		}
	}

	logger.Log.WithField("count", len(nearby)).Info("Nearby donations fetched")
	return nearby, maxKm, nil
}

// Stats aggregates the whole donations collection. The freshness breakdown
// groups by the stored declared value, not the computed bucket.
func (s *DonationService) Stats(ctx context.Context) (*models.DonationStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to compute donation stats")
		return nil, fmt.Errorf("%w: stats: %v", ErrStore, err)
	}
	return stats, nil
}
