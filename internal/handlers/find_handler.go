package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rishmeh/bhookh/internal/models"
	"github.com/rishmeh/bhookh/internal/services"
)

// FindRequestHandler exposes the seeker-query log.
type FindRequestHandler struct {
	Service *services.FindRequestService
}

// NewFindRequestHandler creates a new instance of FindRequestHandler.
func NewFindRequestHandler(service *services.FindRequestService) *FindRequestHandler {
	return &FindRequestHandler{Service: service}
}

// CreateFindRequestHandler logs a seeker query.
func (h *FindRequestHandler) CreateFindRequestHandler(w http.ResponseWriter, r *http.Request) {
	var request models.FindRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	created, err := h.Service.CreateFindRequest(r.Context(), &request)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Failed to create find request")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Find request created successfully",
		"findId":      created.ID.Hex(),
		"findRequest": created,
	})
}

// GetFindRequestsHandler lists every logged seeker query.
func (h *FindRequestHandler) GetFindRequestsHandler(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListFindRequests(r.Context())
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Failed to fetch find requests")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Find requests fetched successfully",
		"count":        len(requests),
		"findRequests": requests,
	})
}
