// Package api holds the request and response shapes of the Makima REST API.
package api

// Common types

// APIError represents an error response from the API. Makima reports the
// cause in "message"; some proxies and older revisions use "error".
type APIError struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text returns the best available message carried by the error body.
func (e APIError) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// StatusMessage is the plain status body returned by delete-style endpoints
type StatusMessage struct {
	Message string `json:"message"`
}
