package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"ledger/internal/core"
	applog "ledger/internal/log"
)

// errorResponse is the body of every non-2xx answer except 500s.
type errorResponse struct {
	Message string `json:"message"`
	Detail  any    `json:"detail"`
}

// internalErrorResponse is the body of a 500 answer.
type internalErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Path    string `json:"path"`
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Failed writing JSON response",
			applog.FieldError, err, applog.FieldStatusCode, status)
	}
}

// writeError maps a handler error onto the HTTP response.
// Validation problems become 422, everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Validation failed",
			applog.NewFields().
				WithOperation(op).
				WithErrorType(applog.ErrorTypeValidation).
				WithError(err).
				ToSlice()...)
		writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
			Message: "Validation error",
			Detail:  verr.Fields,
		})
		return
	}
	writeInternalError(w, r, op, err)
}

// writeInternalError answers 500 with the error text and the request path.
func writeInternalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	sl := applog.NewStructuredLogger(applog.FromContext(r.Context()))
	sl.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op,
		applog.NewFields().WithErrorType(applog.ErrorTypeInternal))

	writeJSON(w, r, http.StatusInternalServerError, internalErrorResponse{
		Message: "Internal server error",
		Error:   err.Error(),
		Path:    r.URL.Path,
	})
}

func writeHTTPError(w http.ResponseWriter, r *http.Request, status int) {
	writeJSON(w, r, status, errorResponse{
		Message: "HTTP error",
		Detail:  http.StatusText(status),
	})
}
