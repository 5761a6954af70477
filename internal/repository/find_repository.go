package repository

import (
	"context"

	"github.com/rishmeh/bhookh/internal/models"
	"github.com/rishmeh/bhookh/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FindRequestRepository handles database operations for logged seeker queries.
type FindRequestRepository struct {
	collection *mongo.Collection
}

// NewFindRequestRepository creates a new instance of FindRequestRepository.
func NewFindRequestRepository(db *mongo.Database) *FindRequestRepository {
	return &FindRequestRepository{
		collection: db.Collection("finds"),
	}
}

// Insert stores a new find request and assigns its generated ID.
func (r *FindRequestRepository) Insert(ctx context.Context, request *models.FindRequest) (*models.FindRequest, error) {
	result, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert find request")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted find request ID")
		return nil, mongo.ErrNilDocument
	}
	request.ID = insertedID

	logger.Log.WithField("find_id", request.ID.Hex()).Info("Find request created successfully")
	return request, nil
}

// FindAll fetches every logged find request.
func (r *FindRequestRepository) FindAll(ctx context.Context) ([]models.FindRequest, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch find requests")
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.FindRequest
	for cursor.Next(ctx) {
		var request models.FindRequest
		if err := cursor.Decode(&request); err != nil {
			logger.Log.WithError(err).Error("Failed to decode find request")
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, nil
}
