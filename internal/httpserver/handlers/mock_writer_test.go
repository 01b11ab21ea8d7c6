package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	apierrors "github.com/makima-ai/makima-go/internal/httpserver/errors"
	"github.com/makima-ai/makima-go/internal/httpserver/handlers"
)

type mockErrorResponseWriter struct {
	*httptest.ResponseRecorder
	errorReceived error
}

func newMockErrorResponseWriter() *mockErrorResponseWriter {
	return &mockErrorResponseWriter{
		ResponseRecorder: httptest.NewRecorder(),
	}
}

func (m *mockErrorResponseWriter) RespondWithError(err error) {
	m.errorReceived = err

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		handlers.RespondWithError(m, apiErr.StatusCode(), err.Error())
	} else {
		handlers.RespondWithError(m, http.StatusInternalServerError, err.Error())
	}
}

// message returns the message field of an error body
func (m *mockErrorResponseWriter) message() string {
	var body struct {
		Message string `json:"message"`
	}
	json.Unmarshal(m.Body.Bytes(), &body) //nolint:errcheck
	return body.Message
}
