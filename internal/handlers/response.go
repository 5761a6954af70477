package handlers

import (
	"encoding/json"
	"net/http"
)

// respondJSON writes a JSON body with the given status. Every response in the
// API carries a top-level "message" field.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondMessage writes a bare {message} body, used for all error responses.
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
