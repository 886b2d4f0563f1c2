// Package shared centralizes domain error translation and JSON writing for
// the HTTP handlers so every endpoint produces the same envelopes.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "biokey/pkg/domain-errors"
)

// WriteError maps a domain error to its HTTP status and writes a JSON error
// envelope.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": string(code),
	})
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
