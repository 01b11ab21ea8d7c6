package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-logr/logr"

	apierrors "github.com/makima-ai/makima-go/internal/httpserver/errors"
	"github.com/makima-ai/makima-go/internal/httpserver/handlers"
)

func errorHandlerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ew := &errorResponseWriter{
			ResponseWriter: w,
			request:        r,
		}

		next.ServeHTTP(ew, r)
	})
}

type errorResponseWriter struct {
	http.ResponseWriter
	request *http.Request
}

var _ handlers.ErrorResponseWriter = &errorResponseWriter{}

var _ http.Flusher = &errorResponseWriter{}

func (w *errorResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// RespondWithError writes {"message": ...} with the status carried by err.
// Client errors are logged at info level, server errors as errors.
func (w *errorResponseWriter) RespondWithError(err error) {
	log := logr.FromContextOrDiscard(w.request.Context())

	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	if err == nil {
		err = errors.New("unknown error")
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		statusCode = apiErr.Code
		message = apiErr.Message
		if apiErr.Err != nil {
			message = apiErr.Error()
		}
	}

	if statusCode >= http.StatusInternalServerError {
		log.Error(err, message)
	} else {
		log.Info(message, "status", statusCode)
	}

	handlers.RespondWithError(w, statusCode, message)
}
