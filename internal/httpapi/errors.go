package httpapi

import (
	"encoding/json"
	"net/http"

	"riskd/internal/inference"
	"riskd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeServiceError maps the inference error taxonomy to HTTP statuses:
// unknown ids and feature names are caller errors (404), degraded artifacts
// are 503 for that endpoint only.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case inference.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case inference.IsUnknownFeature(err):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case inference.IsUnavailable(err):
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
	default:
		if he, ok := err.(HTTPError); ok {
			writeJSONError(w, he.StatusCode(), he.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
