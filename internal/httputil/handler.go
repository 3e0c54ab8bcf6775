package httputil

import (
	"net/http"

	"github.com/redmonkez12/vidtube-api/internal/apperror"
	"github.com/redmonkez12/vidtube-api/internal/logging"
	"github.com/redmonkez12/vidtube-api/internal/metrics"
)

// HandlerFunc is an HTTP handler that reports failures by returning them
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts a HandlerFunc to net/http and normalizes returned errors into the JSON envelope
func Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			WriteError(w, r, err)
		}
	}
}

// WriteError logs err once and writes the error envelope.
// Untyped errors are reported as internal failures with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)
	status := appErr.HTTPStatus()

	metrics.HTTPErrorsTotal.WithLabelValues(string(appErr.Kind)).Inc()

	logger := logging.GetLoggerFromContext(r.Context())
	attrs := []any{"kind", appErr.Kind, "code", appErr.Code, "status", status}
	if appErr.Cause != nil {
		attrs = append(attrs, "error", appErr.Cause.Error())
	}
	if status >= http.StatusInternalServerError {
		logger.Error(appErr.Message, attrs...)
	} else {
		logger.Warn(appErr.Message, attrs...)
	}

	RespondErrorWithCode(w, appErr.Message, appErr.Code, status)
}
