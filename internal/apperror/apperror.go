// Package apperror defines the domain error taxonomy.
//
// Every service method fails with exactly one of the sentinel kinds below,
// wrapped in an *AppError that carries a stable machine-readable code and a
// human-readable message. Handlers map kinds to HTTP statuses with errors.Is
// and extract the code/details with errors.As; nothing else about an error
// leaks to the caller.
package apperror

import "errors"

var (
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrLimitExceeded = errors.New("limit exceeded")
)

// Machine-readable error codes, stable across releases. Clients switch on
// these, not on messages.
const (
	CodeValidationError = "validation_error"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeUserNotFound    = "user_not_found"
	CodeDeckNotFound    = "deck_not_found"
	CodeCardNotFound    = "card_not_found"
	CodeTokenNotFound   = "token_not_found"
	CodeEmailConflict   = "email_conflict"
	CodeLoginConflict   = "login_conflict"
	CodeDeckConflict    = "deck_conflict"
	CodeDeckLimit       = "deck_limit_exceeded"
	CodeCardLimit       = "card_limit_exceeded"
	CodeInternalError   = "internal_error"
)

// AppError is the error type returned by the service layer.
type AppError struct {
	Err     error             // sentinel kind (ErrNotFound, ErrConflict, ...)
	Code    string            // machine-readable code ("deck_not_found", ...)
	Message string            // human-readable description
	Details map[string]string // optional field → message map (validation only)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation returns a validation failure carrying a field → message map.
func Validation(details map[string]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    CodeValidationError,
		Message: "request validation failed",
		Details: details,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Code: CodeUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Code: CodeForbidden, Message: message}
}

// NotFound returns a not-found failure with the given code, one of the
// Code*NotFound constants.
func NotFound(code, message string) *AppError {
	return &AppError{Err: ErrNotFound, Code: code, Message: message}
}

// Conflict returns a uniqueness-violation failure with the given code, one of
// the Code*Conflict constants.
func Conflict(code, message string) *AppError {
	return &AppError{Err: ErrConflict, Code: code, Message: message}
}

// LimitExceeded returns a quota failure with the given code, one of the
// Code*Limit constants.
func LimitExceeded(code, message string) *AppError {
	return &AppError{Err: ErrLimitExceeded, Code: code, Message: message}
}
