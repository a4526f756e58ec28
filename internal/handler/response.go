// Package handler translates HTTP requests into service calls and domain
// results back into JSON. Handlers validate input at the boundary, never
// touch the database, and map every domain error through writeError.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/akozyrev/memocards/internal/apperror"
	"github.com/akozyrev/memocards/internal/repository"
)

const (
	defaultPage = 0
	defaultSize = 20
	maxSize     = 100
)

// ErrorResponse is the error shape every endpoint returns: a machine code,
// a human message, and per-field details for validation failures.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// writeJSON sends a JSON response. Headers and status must go out before the
// body, so encode errors can only be logged.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error onto an HTTP status and the standard error
// body. Errors without an AppError in their chain are internal and never
// leak their message to the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Code:    apperror.CodeInternalError,
			Message: "an internal error occurred",
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperror.ErrLimitExceeded):
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// decodeJSON parses the request body into dst. A malformed body is a
// validation failure, same shape as a field error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.Validation(map[string]string{"body": "malformed JSON"})
	}
	return nil
}

// decodeJSONOptional is decodeJSON for endpoints where an empty body is
// valid. dst is left zero when no body was sent.
func decodeJSONOptional(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperror.Validation(map[string]string{"body": "malformed JSON"})
}

// pageParams reads ?page and ?size with defaults 0 and 20. Bad or negative
// values fall back to the defaults; size is capped.
func pageParams(r *http.Request) repository.Page {
	page := repository.Page{Page: defaultPage, Size: defaultSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			page.Page = v
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page.Size = v
		}
	}
	if page.Size > maxSize {
		page.Size = maxSize
	}
	return page
}
