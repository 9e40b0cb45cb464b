package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}

// respondError отправляет структурированное тело {error, description}
func respondError(w http.ResponseWriter, status int, code, description string) {
	respondJSON(w, status, map[string]string{
		"error":       code,
		"description": description,
	})
}
