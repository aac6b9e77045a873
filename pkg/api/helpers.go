// Package api provides standardized helper functions and contracts for
// HTTP API responses.
package api

import (
	"encoding/json"
	"net/http"

	apperrors "inkpress-backend/pkg/errors"
)

// Success sends a standardized successful HTTP response with optional JSON data.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error sends a standardized error response with consistent JSON format.
func Error(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// FromError maps an application error to the appropriate HTTP response.
func FromError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsNotFound(err):
		Error(w, http.StatusNotFound, err.Error())
	case apperrors.IsValidation(err):
		Error(w, http.StatusBadRequest, err.Error())
	case apperrors.IsType(err, apperrors.ErrorTypeConflict):
		Error(w, http.StatusConflict, err.Error())
	case apperrors.IsType(err, apperrors.ErrorTypeUnavailable):
		Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}
