// internal/api/respond.go
package api

import (
	"encoding/json"
	"net/http"
)

func respondWithJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}

// respondBadRequest carries structured per-field details so the caller can
// fix every reported problem before retrying.
func respondBadRequest(w http.ResponseWriter, details any) {
	respondWithJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "bad request",
		"details": details,
	})
}
