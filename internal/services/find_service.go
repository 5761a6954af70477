package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rishmeh/bhookh/internal/models"
	"github.com/rishmeh/bhookh/pkg/logger"
)

// FindRequestStore is the persistence surface for logged seeker queries.
// Implemented by repository.FindRequestRepository.
type FindRequestStore interface {
	Insert(ctx context.Context, request *models.FindRequest) (*models.FindRequest, error)
	FindAll(ctx context.Context) ([]models.FindRequest, error)
}

// FindRequestService logs and lists seeker queries.
type FindRequestService struct {
	store FindRequestStore
	now   func() time.Time
}

// NewFindRequestService creates a new instance of FindRequestService.
func NewFindRequestService(store FindRequestStore) *FindRequestService {
	return &FindRequestService{
		store: store,
		now:   time.Now,
	}
}

// CreateFindRequest logs a seeker query, defaulting the filter tag to "All".
func (s *FindRequestService) CreateFindRequest(ctx context.Context, request *models.FindRequest) (*models.FindRequest, error) {
	if request.Filter == "" {
		request.Filter = "All"
	}
	request.CreatedAt = s.now()

	created, err := s.store.Insert(ctx, request)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to create find request")
		return nil, fmt.Errorf("%w: create find request: %v", ErrStore, err)
	}

	return created, nil
}

// ListFindRequests returns every logged seeker query.
func (s *FindRequestService) ListFindRequests(ctx context.Context) ([]models.FindRequest, error) {
	requests, err := s.store.FindAll(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch find requests")
		return nil, fmt.Errorf("%w: list find requests: %v", ErrStore, err)
	}
	if requests == nil {
		requests = []models.FindRequest{}
	}

	logger.Log.WithField("count", len(requests)).Info("Find requests fetched")
	return requests, nil
}
