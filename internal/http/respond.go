package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"housebudget/internal/amqp"
	"housebudget/internal/core"
	"housebudget/internal/extract"
	applog "housebudget/internal/log"
	"housebudget/internal/services"
	"housebudget/internal/store"
)

// ErrorResponse is the body of every non-2xx API reply.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

var validationErrors = []error{
	core.ErrInvalidMonth,
	core.ErrEmptyBankName,
	core.ErrEmptyReceiver,
	core.ErrEmptyCategory,
	core.ErrFieldTooLong,
	core.ErrInvalidAmount,
	core.ErrMissingField,
	core.ErrFieldType,
	amqp.ErrEmptyStatement,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

// writeServiceError maps a service error to a status code. Unexpected
// errors are logged and answered with fallback, never the raw error text.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case isValidationError(err):
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "Transaction not found")
	case errors.Is(err, services.ErrUnknownBreakdown):
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
	case errors.Is(err, services.ErrQueueUnavailable),
		errors.Is(err, services.ErrExtractionDisabled),
		errors.Is(err, amqp.ErrCircuitOpen):
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	case errors.Is(err, extract.ErrUpstream),
		errors.Is(err, extract.ErrEmptyReply),
		errors.Is(err, extract.ErrNotAList):
		logError(r, fallback, err)
		writeJSONError(w, http.StatusBadGateway, "upstream_error", fallback)
	case errors.Is(err, context.DeadlineExceeded):
		logError(r, fallback, err)
		writeJSONError(w, http.StatusGatewayTimeout, "timeout", fallback)
	default:
		logError(r, fallback, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", fallback)
	}
}

func logError(r *http.Request, msg string, err error) {
	applog.FromContext(r.Context()).ErrorContext(r.Context(), msg,
		applog.FieldError, err.Error(),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
}
