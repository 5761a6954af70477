package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rishmeh/bhookh/internal/models"
	"github.com/rishmeh/bhookh/internal/services"
)

// DonationHandler exposes donation CRUD, proximity search and stats.
type DonationHandler struct {
	Service *services.DonationService
}

// NewDonationHandler creates a new instance of DonationHandler.
func NewDonationHandler(service *services.DonationService) *DonationHandler {
	return &DonationHandler{Service: service}
}

// CreateDonationHandler handles creation of a new donation.
func (h *DonationHandler) CreateDonationHandler(w http.ResponseWriter, r *http.Request) {
	var donation models.Donation
	if err := json.NewDecoder(r.Body).Decode(&donation); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	created, err := h.Service.CreateDonation(r.Context(), &donation)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			respondMessage(w, http.StatusBadRequest, "Full name, food category, and food freshness are required")
			return
		}
		respondMessage(w, http.StatusInternalServerError, "Failed to create donation")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Donation created successfully",
		"donationId": created.ID.Hex(),
		"donation":   created,
	})
}

// GetDonationsHandler lists active donations with optional query filters.
func (h *DonationHandler) GetDonationsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := models.DonationFilter{
		FoodCat:   query.Get("food_cat"),
		FoodFresh: query.Get("food_fresh"),
	}
	if raw := query.Get("drop_off"); raw != "" {
		dropOff := raw == "true"
		filter.DropOff = &dropOff
	}

	donations, err := h.Service.ListActive(r.Context(), filter)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Failed to fetch donations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Donations fetched successfully",
		"count":     len(donations),
		"donations": donations,
	})
}

// GetDonationHandler fetches one active donation by ID.
func (h *DonationHandler) GetDonationHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	donation, err := h.Service.GetDonation(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "Donation not found")
			return
		}
		respondMessage(w, http.StatusInternalServerError, "Failed to fetch donation")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Donation fetched successfully",
		"donation": donation,
	})
}

// UpdateDonationHandler merges the request body into a donation.
func (h *DonationHandler) UpdateDonationHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	donation, err := h.Service.UpdateDonation(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "Donation not found")
			return
		}
		respondMessage(w, http.StatusInternalServerError, "Failed to update donation")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Donation updated successfully",
		"donation": donation,
	})
}

// DeleteDonationHandler removes a donation and echoes the deleted record.
func (h *DonationHandler) DeleteDonationHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	donation, err := h.Service.DeleteDonation(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "Donation not found")
			return
		}
		respondMessage(w, http.StatusInternalServerError, "Failed to delete donation")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Donation deleted successfully",
		"donation": donation,
	})
}

type nearbyRequest struct {
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	MaxDistance *float64 `json:"maxDistance"`
}

// NearbyDonationsHandler runs a haversine proximity search around the given
// point.
func (h *DonationHandler) NearbyDonationsHandler(w http.ResponseWriter, r *http.Request) {
	var req nearbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	donations, maxKm, err := h.Service.Nearby(r.Context(), req.Lat, req.Lon, req.MaxDistance)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			respondMessage(w, http.StatusBadRequest, "Latitude and longitude are required")
			return
		}
		respondMessage(w, http.StatusInternalServerError, "Failed to fetch nearby donations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Nearby donations fetched successfully",
		"searchLocation": models.GeoPoint{Lat: *req.Lat, Lon: *req.Lon},
		"maxDistance":    maxKm,
		"count":          len(donations),
		"donations":      donations,
	})
}

// GetStatsHandler returns aggregate donation statistics.
func (h *DonationHandler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Statistics fetched successfully",
		"stats":   stats,
	})
}
