package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid username or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Reconciliation failure classes. Each maps to one distinct failure mode of a
// sync attempt so the caller can show an accurate message instead of a
// generic one.
var (
	// ErrSyncTransport: the external source was unreachable at the network
	// layer. Safe to retry immediately.
	ErrSyncTransport = New("SYNC_TRANSPORT", http.StatusBadGateway, "external source unreachable")
	// ErrSyncAuthorization: the source answered with a login page instead of
	// data. Needs operator action, not a retry.
	ErrSyncAuthorization = New("SYNC_AUTHORIZATION", http.StatusBadGateway, "external source returned an authentication page instead of data")
	// ErrSyncSchema: the payload was not the expected array of rows, or the
	// store rejected every record.
	ErrSyncSchema = New("SYNC_SCHEMA", http.StatusBadGateway, "external payload has an unexpected shape")
	// ErrSyncEmpty: zero usable rows. Soft failure; existing data is kept.
	ErrSyncEmpty = New("SYNC_EMPTY", http.StatusUnprocessableEntity, "external source returned no rows")
	// ErrSyncInProgress: another reconciliation is already running.
	ErrSyncInProgress = New("SYNC_IN_PROGRESS", http.StatusConflict, "a sync is already in progress")
	// ErrSyncNotConfigured: no source URL has been set yet.
	ErrSyncNotConfigured = New("SYNC_NOT_CONFIGURED", http.StatusPreconditionFailed, "no external source url configured")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
