// Package handler contains the HTTP handlers of the filmorate REST API.
//
// Handlers are glue: they parse path, query and body, call one service
// method and write the result. Business rules live in internal/service.
// Each handler exposes a Routes method so the server and the tests mount
// exactly the same routing table.
package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON / writeError so the wire format is
// uniform. Errors always have the same shape:
//
//	{"error": "not_found", "message": "film not found with id 42"}
//
// Validation errors also name the offending field:
//
//	{"error": "validation_error", "message": "login must not contain whitespace", "field": "login"}

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/sakif/filmorate/internal/apperror"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all that is left is to log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status.
//
//	apperror.ErrValidation → 400
//	apperror.ErrNotFound   → 404
//	anything else          → 500 with a generic message
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case apperror.IsValidation(err):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case apperror.IsNotFound(err):
			status = http.StatusNotFound
			errorType = "not_found"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	// Never echo internal errors: they can carry SQL or file paths.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads one JSON value from the request body into dst.
// Malformed bodies become a validation error (400).
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("", "request body is required")
		}
		return apperror.ValidationFailed("", "invalid JSON body: "+err.Error())
	}
	return nil
}

// pathID parses the named chi URL parameter as a positive id.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be a positive integer, got %q", name, raw))
	}
	return id, nil
}

// queryInt parses an optional integer query parameter. ok is false when the
// parameter is absent or blank.
func queryInt(r *http.Request, name string) (value int64, ok bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, apperror.ValidationFailed(name, fmt.Sprintf("%s must be an integer, got %q", name, raw))
	}
	return value, true, nil
}

// queryIntDefault is queryInt with a fallback for the absent case.
func queryIntDefault(r *http.Request, name string, def int) (int, error) {
	v, ok, err := queryInt(r, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return int(v), nil
}

// requiredQueryID parses a mandatory positive id from the query string.
func requiredQueryID(r *http.Request, name string) (int64, error) {
	v, ok, err := queryInt(r, name)
	if err != nil {
		return 0, err
	}
	if !ok || v <= 0 {
		return 0, apperror.ValidationFailed(name, name+" must be a positive integer")
	}
	return v, nil
}
