package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

// maxBodyBytes bounds request bodies (a 25 min session at 500 Hz fits comfortably)
const maxBodyBytes = 64 << 20

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// respondPipelineError maps pipeline and store errors to HTTP status codes
func respondPipelineError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case contracts.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case contracts.IsConditioning(err):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, contracts.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, contracts.ErrStoreDisabled):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.WithError(err).Error("Request failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
