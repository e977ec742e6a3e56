package handler

// RESPONSE ENVELOPE:
// Every endpoint responds with the same shape, success or failure:
//
//	{"error": false, "data": {...}, "message": "User successfully registered"}
//	{"error": true,  "data": null,  "message": "email already registered"}
//
// A fixed envelope means clients parse one shape regardless of status code.
//
// CANONICAL STATUS MAPPING:
// writeError is the ONLY place domain errors become HTTP status codes. The
// service layer raises apperror sentinels; this table translates them. One
// table, applied uniformly — the same failure kind always gets the same
// status, whichever flow raised it.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/accounts-api/internal/apperror"
)

// Envelope is the fixed response shape shared by every endpoint.
type Envelope struct {
	Error   bool   `json:"error"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// writeSuccess sends a success envelope with the given status, payload, and
// human-readable message.
//
// HEADER ORDER MATTERS: headers and status code must be set BEFORE the body —
// once Encode writes, the headers are on the wire and further changes are
// silently ignored.
func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Error: false, Data: data, Message: message}); err != nil {
		// Headers already sent — all we can do is log.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError maps a domain error to its canonical HTTP status and sends the
// error envelope.
//
// errors.As extracts the *AppError for the client-safe message; errors.Is
// walks the wrap chain (service layers add %w context) to find the sentinel.
// Errors with no AppError in the chain are internal: the client gets a generic
// 500 and the details stay in the server log — raw error text can carry SQL
// fragments, file paths, and other things that must never leak.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrDuplicateEmail):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrInvalidCredentials):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrTokenMissing):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrTokenMalformed):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrTokenInvalid):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrUnavailable):
			status = http.StatusServiceUnavailable
		}

		writeErrorEnvelope(w, status, appErr.Message)
		return
	}

	writeErrorEnvelope(w, http.StatusInternalServerError, "an internal error occurred")
}

func writeErrorEnvelope(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Error: true, Data: nil, Message: message}); err != nil {
		slog.Error("failed to encode error response", slog.String("error", err.Error()))
	}
}
