package api

import (
	"errors"
	"net/http"

	"kvgateway/internal/apperr"
	"kvgateway/pkg/logger"
)

// handlerFunc is an HTTP handler that reports failures as errors
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts fn to http.HandlerFunc, translating a returned error into
// the JSON error response
func handle(l *logger.Logger, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeAppError(w, r, l, err)
		}
	}
}

// writeAppError is the single place where error kinds become status codes
func writeAppError(w http.ResponseWriter, r *http.Request, l *logger.Logger, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	detail := http.StatusText(status)
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		detail = appErr.Message
	}

	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"kind", kind.String(),
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "Request failed", attrs...)
	} else {
		l.WarnContext(r.Context(), "Request rejected", attrs...)
	}

	writeError(w, status, detail)
}
