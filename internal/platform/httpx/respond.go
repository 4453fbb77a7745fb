// Package httpx provides JSON response utilities for the API surface.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error envelope returned on every non-2xx response.
// Errors carries field-level validation messages keyed by form field name;
// clients attach them to the corresponding inputs and fall back to Message
// when the map is empty.
type ErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Message sends an error envelope with only a banner message.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Message: message})
}

// Fields sends an error envelope carrying field-keyed validation messages.
func Fields(w http.ResponseWriter, status int, message string, fields map[string]string) {
	JSON(w, status, ErrorBody{Message: message, Errors: fields})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
