package handlers

import (
	"encoding/json"
	"net/http"
)

// statusResponse is the fixed {_id, status, message} shape the frontend
// expects for watchlist acknowledgements and not-found answers.
type statusResponse struct {
	ID      string `json:"_id"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeRaw forwards an upstream JSON payload untouched.
func writeRaw(w http.ResponseWriter, status int, payload json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
