package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"spendlens/internal/budget"
	"spendlens/internal/core"
	"spendlens/internal/log"
	"spendlens/internal/services"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedBody),
		errors.Is(err, core.ErrInvalidSpec),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound), errors.Is(err, budget.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrExportUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with {"error": msg}. Server errors are logged and
// their details withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger := log.FromContext(r.Context())
		log.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err,
			log.ComponentHTTP, op, log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()))
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errMalformedBody, err)
	}
	return nil
}
