// Package errors defines the errors returned by the HTTP handlers. Each one
// carries the status code written to the response.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/makima-ai/makima-go/pkg/client"
)

// APIError is an error with an HTTP status code and a client-facing message
type APIError struct {
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status written for the error
func (e *APIError) StatusCode() int {
	return e.Code
}

// NewBadRequestError creates a 400 error
func NewBadRequestError(message string, err error) *APIError {
	return &APIError{Code: http.StatusBadRequest, Message: message, Err: err}
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string, err error) *APIError {
	return &APIError{Code: http.StatusNotFound, Message: message, Err: err}
}

// NewConflictError creates a 409 error
func NewConflictError(message string, err error) *APIError {
	return &APIError{Code: http.StatusConflict, Message: message, Err: err}
}

// NewInternalServerError creates a 500 error
func NewInternalServerError(message string, err error) *APIError {
	return &APIError{Code: http.StatusInternalServerError, Message: message, Err: err}
}

// FromClientError converts an error returned by a client implementation.
// Service errors keep their status and message. Transport errors become 502.
func FromClientError(message string, err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var serviceErr *client.ServiceError
	if errors.As(err, &serviceErr) {
		return &APIError{Code: serviceErr.StatusCode, Message: serviceErr.Message}
	}
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		return &APIError{Code: http.StatusBadGateway, Message: message, Err: err}
	}
	return NewInternalServerError(message, err)
}
