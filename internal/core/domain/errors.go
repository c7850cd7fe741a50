package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an Error into the externally visible taxonomy.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindConflict           ErrorKind = "conflict"
	KindAuthentication     ErrorKind = "authentication"
	KindRateLimit          ErrorKind = "rate_limit"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindInternal           ErrorKind = "internal"
)

// Error defines a standard error shape for the API.
type Error struct {
	// HTTP status code (e.g., 400, 409, 503)
	Code int
	// Taxonomy bucket, stable across transports
	Kind ErrorKind
	// Safe message for the client
	Message string
	// Original error for internal logging
	Log error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Log
}

// KindOf extracts the taxonomy bucket from any error chain.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// ValidationError creates a rich validation error carrying per-field detail.
func ValidationError(fields map[string]string) *Error {
	msg := "one or more fields failed validation"
	if len(fields) == 1 {
		for name, detail := range fields {
			msg = fmt.Sprintf("%s: %s", name, detail)
		}
	} else if len(fields) > 1 {
		detail, _ := json.Marshal(fields)
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	return &Error{Code: http.StatusBadRequest, Kind: KindValidation, Message: msg}
}

// RequiredFieldError flags a single missing required field.
func RequiredFieldError(field string) *Error {
	return ValidationError(map[string]string{field: "required field is missing"})
}

// InvalidTypeError flags a field whose runtime type does not match its
// declaration.
func InvalidTypeError(field, want string) *Error {
	return ValidationError(map[string]string{field: fmt.Sprintf("invalid type, expected %s", want)})
}

// BadRequestError creates a standard error for a malformed request.
func BadRequestError(msg string) *Error {
	return &Error{Code: http.StatusBadRequest, Kind: KindValidation, Message: msg}
}

// NotFoundError creates a standard 404 error.
func NotFoundError(msg string) *Error {
	return &Error{Code: http.StatusNotFound, Kind: KindNotFound, Message: msg}
}

// ConflictError flags an illegal state transition.
func ConflictError(msg string) *Error {
	return &Error{Code: http.StatusConflict, Kind: KindConflict, Message: msg}
}

// AuthenticationError signals that the upstream provider rejected credentials.
func AuthenticationError(msg string, err error) *Error {
	return &Error{Code: http.StatusUnauthorized, Kind: KindAuthentication, Message: msg, Log: err}
}

// RateLimitError signals provider throttling.
func RateLimitError(msg string, err error) *Error {
	return &Error{Code: http.StatusTooManyRequests, Kind: KindRateLimit, Message: msg, Log: err}
}

// ServiceUnavailableError signals a provider timeout or 5xx after retries
// were exhausted.
func ServiceUnavailableError(msg string, err error) *Error {
	return &Error{Code: http.StatusServiceUnavailable, Kind: KindServiceUnavailable, Message: msg, Log: err}
}

// InternalError creates a standard error for any unexpected failure.
func InternalError(msg string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Kind: KindInternal, Message: msg, Log: err}
}

// WrapError allows wrapping a standard error in a domain Error.
func WrapError(err error, kind ErrorKind, code int, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: fmt.Sprintf("%s: %v", msg, err),
		Log:     err,
	}
}
