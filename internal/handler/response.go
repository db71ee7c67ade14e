package handler

// RESPONSE HELPERS:
// These functions standardise how the REST routes (everything that is not
// /graphql) send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response has the same shape:
//   {"error": "auth_exchange_failed", "message": "bad_verification_code"}
//
// GraphQL errors do NOT go through here: graphql-go renders them into the
// "errors" array of the GraphQL response, with the same apperror code in
// extensions.code. This file is the HTTP-status half of that mapping.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/photoshare-api/internal/apperror"
)

// ErrorResponse is the standard error format returned by the REST routes.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Offending input, for validation errors
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set BEFORE the body is written. Once Encode
// calls w.Write, the headers are on the wire and later changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps a domain error to its HTTP status and error type.
//
// ERROR MAPPING:
//
//	ErrValidation   → 400 validation_error
//	ErrUnauthorized → 401 unauthorized
//	ErrAuthExchange → 401 auth_exchange_failed   (GitHub rejected the code)
//	ErrNotFound     → 404 not_found
//	ErrTransport    → 502 upstream_unavailable   (GitHub unreachable / timed out)
//	ErrProtocol     → 502 upstream_protocol      (GitHub answered garbage)
//
// Upstream failures are 502 and not 500: the API itself is healthy, the
// service it depends on is not.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrAuthExchange):
		return http.StatusUnauthorized, "auth_exchange_failed"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrTransport):
		return http.StatusBadGateway, "upstream_unavailable"
	case errors.Is(err, apperror.ErrProtocol):
		return http.StatusBadGateway, "upstream_protocol"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// errors.As() walks the chain (fmt.Errorf("...: %w") wrappers included) and
// extracts the *apperror.AppError for its client-safe message.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, errorType := errorStatus(appErr)
		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	// Unknown error: NEVER expose internal details (SQL, file paths, ...).
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
