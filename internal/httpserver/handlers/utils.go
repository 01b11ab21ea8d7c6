package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
)

// ErrorResponseWriter is a response writer that can render an error
type ErrorResponseWriter interface {
	http.ResponseWriter
	RespondWithError(err error)
}

// RespondWithJSON writes data as a JSON response with the given status
func RespondWithJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data) //nolint:errcheck
}

// RespondWithError writes the error body understood by the SDK
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"message": message})
}

// DecodeJSONBody decodes the request body into target
func DecodeJSONBody(r *http.Request, target any) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// GetPathParam returns a decoded path variable. Routes match the escaped
// path, so keys containing '/' arrive percent-encoded.
func GetPathParam(r *http.Request, name string) (string, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok || raw == "" {
		return "", fmt.Errorf("missing path parameter %q", name)
	}
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid path parameter %q: %w", name, err)
	}
	return value, nil
}
