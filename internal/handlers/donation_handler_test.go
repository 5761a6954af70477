package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rishmeh/bhookh/internal/models"
	"github.com/rishmeh/bhookh/internal/services"
	"github.com/rishmeh/bhookh/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMain(m *testing.M) {
	logger.InitLogger()
	os.Exit(m.Run())
}

// memoryStore backs the handler tests with the same query semantics the Mongo
// repository provides.
type memoryStore struct {
	donations []models.Donation
	requests  []models.FindRequest
}

func (s *memoryStore) Insert(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	d.ID = primitive.NewObjectID()
	s.donations = append(s.donations, *d)
	return d, nil
}

func (s *memoryStore) FindActive(ctx context.Context, category string, dropOff *bool, since time.Time) ([]models.Donation, error) {
	var result []models.Donation
	for _, d := range s.donations {
		if d.CreatedAt.Before(since) {
			continue
		}
		if category != "" && d.FoodCat != category {
			continue
		}
		if dropOff != nil && d.DropOff != *dropOff {
			continue
		}
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *memoryStore) FindActiveByID(ctx context.Context, id primitive.ObjectID, since time.Time) (*models.Donation, error) {
	for _, d := range s.donations {
		if d.ID == id && !d.CreatedAt.Before(since) {
			found := d
			return &found, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *memoryStore) FindAll(ctx context.Context) ([]models.Donation, error) {
	return append([]models.Donation(nil), s.donations...), nil
}

func (s *memoryStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Donation, error) {
	for i, d := range s.donations {
		if d.ID == id {
			if name, ok := fields["full_name"].(string); ok {
				s.donations[i].FullName = name
			}
			found := s.donations[i]
			return &found, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *memoryStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	for i, d := range s.donations {
		if d.ID == id {
			found := d
			s.donations = append(s.donations[:i], s.donations[i+1:]...)
			return &found, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *memoryStore) Stats(ctx context.Context) (*models.DonationStats, error) {
	stats := &models.DonationStats{TotalDonations: int64(len(s.donations))}
	for _, d := range s.donations {
		if d.DropOff {
			stats.DropOffAvailable++
		} else {
			stats.PickupRequired++
		}
	}
	return stats, nil
}

func (s *memoryStore) InsertFind(ctx context.Context, r *models.FindRequest) (*models.FindRequest, error) {
	r.ID = primitive.NewObjectID()
	s.requests = append(s.requests, *r)
	return r, nil
}

func (s *memoryStore) FindAllFinds(ctx context.Context) ([]models.FindRequest, error) {
	return s.requests, nil
}

// findStoreAdapter exposes the find-request slice of memoryStore under the
// FindRequestStore method names.
type findStoreAdapter struct{ *memoryStore }

func (a findStoreAdapter) Insert(ctx context.Context, r *models.FindRequest) (*models.FindRequest, error) {
	return a.InsertFind(ctx, r)
}

func (a findStoreAdapter) FindAll(ctx context.Context) ([]models.FindRequest, error) {
	return a.FindAllFinds(ctx)
}

// newTestRouter mirrors the route registration in cmd/server.
func newTestRouter(store *memoryStore) *mux.Router {
	donationHandler := NewDonationHandler(services.NewDonationService(store))
	findHandler := NewFindRequestHandler(services.NewFindRequestService(findStoreAdapter{store}))

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/donate", donationHandler.CreateDonationHandler).Methods("POST")
	api.HandleFunc("/donations", donationHandler.GetDonationsHandler).Methods("GET")
	api.HandleFunc("/donations/nearby", donationHandler.NearbyDonationsHandler).Methods("POST")
	api.HandleFunc("/donations/{id}", donationHandler.GetDonationHandler).Methods("GET")
	api.HandleFunc("/donations/{id}", donationHandler.UpdateDonationHandler).Methods("PUT")
	api.HandleFunc("/donations/{id}", donationHandler.DeleteDonationHandler).Methods("DELETE")
	api.HandleFunc("/find", findHandler.CreateFindRequestHandler).Methods("POST")
	api.HandleFunc("/find", findHandler.GetFindRequestsHandler).Methods("GET")
	api.HandleFunc("/stats", donationHandler.GetStatsHandler).Methods("GET")
	return router
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func seed(store *memoryStore, age time.Duration, declared string, location []models.GeoPoint) models.Donation {
	d := models.Donation{
		ID:        primitive.NewObjectID(),
		FullName:  "Asha",
		Contact:   "9999999999",
		FoodCat:   "cooked-meal",
		FoodFresh: declared,
		Location:  location,
		CreatedAt: time.Now().Add(-age),
	}
	store.donations = append(store.donations, d)
	return d
}

func TestCreateDonationHandler(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store)

	recorder := doJSON(t, router, http.MethodPost, "/api/donate", map[string]interface{}{
		"full_name":  "Asha",
		"food_cat":   "bakery",
		"food_fresh": "1-3 hr",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, "Donation created successfully", body["message"])
	assert.NotEmpty(t, body["donationId"])

	donation := body["donation"].(map[string]interface{})
	assert.Equal(t, "9999999999", donation["contact"])
}

func TestCreateDonationHandlerMissingFields(t *testing.T) {
	router := newTestRouter(&memoryStore{})

	recorder := doJSON(t, router, http.MethodPost, "/api/donate", map[string]interface{}{
		"full_name": "Asha",
		"food_cat":  "bakery",
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Full name, food category, and food freshness are required", decodeBody(t, recorder)["message"])
}

func TestGetDonationsHandlerComputedFreshness(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store)

	seed(store, 13*time.Hour, "1-3 hr", nil)
	seed(store, 25*time.Hour, "1-3 hr", nil)

	recorder := doJSON(t, router, http.MethodGet, "/api/donations", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, float64(1), body["count"])

	donations := body["donations"].([]interface{})
	require.Len(t, donations, 1)
	assert.Equal(t, "12+ hr", donations[0].(map[string]interface{})["food_fresh"])
}

func TestGetDonationsHandlerDropOffFilter(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store)

	seed(store, time.Hour, "1-3 hr", nil)
	withDropOff := seed(store, 2*time.Hour, "1-3 hr", nil)
	store.donations[1].DropOff = true

	recorder := doJSON(t, router, http.MethodGet, "/api/donations?drop_off=true", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	donations := body["donations"].([]interface{})
	require.Len(t, donations, 1)
	assert.Equal(t, withDropOff.ID.Hex(), donations[0].(map[string]interface{})["id"])
}

func TestGetDonationHandlerNotFound(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store)

	expired := seed(store, 25*time.Hour, "1-3 hr", nil)

	recorder := doJSON(t, router, http.MethodGet, "/api/donations/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	// Present in the store but past the active window.
	recorder = doJSON(t, router, http.MethodGet, "/api/donations/"+expired.ID.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestUpdateDonationHandler(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store)

	d := seed(store, time.Hour, "1-3 hr", nil)

	recorder := doJSON(t, router, http.MethodPut, "/api/donations/"+d.ID.Hex(), map[string]interface{}{
		"full_name": "Ravi",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	donation := body["donation"].(map[string]interface{})
	assert.Equal(t, "Ravi", donation["full_name"])

	recorder = doJSON(t, router, http.MethodPut, "/api/donations/"+primitive.NewObjectID().Hex(), map[string]interface{}{})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestDeleteDonationHandlerTwice(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store)

	d := seed(store, time.Hour, "1-3 hr", nil)
	path := "/api/donations/" + d.ID.Hex()

	recorder := doJSON(t, router, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	donation := body["donation"].(map[string]interface{})
	assert.Equal(t, d.ID.Hex(), donation["id"])

	recorder = doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestNearbyDonationsHandler(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store)

	near := seed(store, time.Hour, "1-3 hr", []models.GeoPoint{{Lat: 0, Lon: 0.001}})
	seed(store, time.Hour, "1-3 hr", []models.GeoPoint{{Lat: 10, Lon: 10}})

	recorder := doJSON(t, router, http.MethodPost, "/api/donations/nearby", map[string]interface{}{
		"lat":         0,
		"lon":         0,
		"maxDistance": 1,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, float64(1), body["count"])

	donations := body["donations"].([]interface{})
	require.Len(t, donations, 1)
	assert.Equal(t, near.ID.Hex(), donations[0].(map[string]interface{})["id"])
}

func TestNearbyDonationsHandlerMissingCoordinates(t *testing.T) {
	router := newTestRouter(&memoryStore{})

	recorder := doJSON(t, router, http.MethodPost, "/api/donations/nearby", map[string]interface{}{
		"lat": 0,
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Latitude and longitude are required", decodeBody(t, recorder)["message"])
}

func TestNearbyRouteNotShadowedByID(t *testing.T) {
	router := newTestRouter(&memoryStore{})

	// Must hit the nearby handler (400 for missing body fields), not the
	// ID-based routes.
	recorder := doJSON(t, router, http.MethodPost, "/api/donations/nearby", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetStatsHandler(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store)

	seed(store, time.Hour, "1-3 hr", nil)
	seed(store, 25*time.Hour, "1-3 hr", nil)

	recorder := doJSON(t, router, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	stats := body["stats"].(map[string]interface{})
	// Stats span the whole collection, including records past the window.
	assert.Equal(t, float64(2), stats["totalDonations"])
}

func TestFindRequestHandlers(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store)

	recorder := doJSON(t, router, http.MethodPost, "/api/find", map[string]interface{}{
		"curr_location": map[string]float64{"lat": 12.9, "lon": 77.6},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	body := decodeBody(t, recorder)
	request := body["findRequest"].(map[string]interface{})
	assert.Equal(t, "All", request["filter"])
	assert.NotEmpty(t, body["findId"])

	recorder = doJSON(t, router, http.MethodGet, "/api/find", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), decodeBody(t, recorder)["count"])
}

func TestScenarioExpiredRecordLifecycle(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store)

	expired := seed(store, 25*time.Hour, "1-3 hr", nil)

	// Absent from listings and direct reads.
	recorder := doJSON(t, router, http.MethodGet, "/api/donations", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(0), decodeBody(t, recorder)["count"])

	recorder = doJSON(t, router, http.MethodGet, "/api/donations/"+expired.ID.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	// Still counted by stats until physically removed.
	recorder = doJSON(t, router, http.MethodGet, "/api/stats", nil)
	stats := decodeBody(t, recorder)["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["totalDonations"])

	// Simulate the sweep, then the record is gone everywhere.
	cutoff := time.Now().Add(-24 * time.Hour)
	var kept []models.Donation
	for _, d := range store.donations {
		if !d.CreatedAt.Before(cutoff) {
			kept = append(kept, d)
		}
	}
	store.donations = kept

	recorder = doJSON(t, router, http.MethodGet, "/api/stats", nil)
	stats = decodeBody(t, recorder)["stats"].(map[string]interface{})
	assert.Equal(t, float64(0), stats["totalDonations"])
}

func TestCreateDonationHandlerInvalidPayload(t *testing.T) {
	router := newTestRouter(&memoryStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/donate", bytes.NewBufferString("{not json"))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Invalid request payload", decodeBody(t, recorder)["message"])
}
