package handler

// RESPONSE HELPERS:
// Every error response from the API has the same shape:
//
//	{"error": "not_found", "message": "Profile not found"}
//
// Validation failures also list each offending field:
//
//	{"error": "validation_error", "message": "...", "errors": [{"field": "status", "message": "Status is required"}]}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/devconnector/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string                `json:"error"`            // machine-readable kind, e.g. "not_found"
	Message string                `json:"message"`          // human-readable description
	Errors  []apperror.FieldError `json:"errors,omitempty"` // per-field detail for validation errors
}

// MessageResponse is the body of operations that return no resource.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must be set before the body is written.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent; all we can do is log
			logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it.
//
// Only *apperror.AppError values reach the client with their message. Anything
// else is a server fault: it is logged in full and answered with a generic 500
// so SQL, file paths and the like never leak.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		if status != http.StatusInternalServerError {
			logger.Debug("request rejected",
				slog.Int("status", status),
				slog.String("error", appErr.Message),
			)
			writeJSON(w, logger, status, ErrorResponse{
				Error:   errorType,
				Message: appErr.Message,
				Errors:  appErr.Fields,
			})
			return
		}
	}

	logger.Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, logger, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "Server Error",
	})
}
