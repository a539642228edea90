package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)

// Error codes returned to clients
const (
	CodeNotFound        = "ERR_NOT_FOUND"
	CodeUnauthorized    = "ERR_UNAUTHORIZED"
	CodeForbidden       = "ERR_FORBIDDEN"
	CodeInvalidInput    = "ERR_INVALID_INPUT"
	CodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
	CodeUnsupported     = "ERR_UNSUPPORTED_MEDIA_TYPE"
	CodeInternal        = "ERR_INTERNAL"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func PayloadTooLarge(message string) *AppError {
	return NewAppError(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, message, ErrPayloadTooLarge)
}

func UnsupportedMediaType(message string) *AppError {
	return NewAppError(http.StatusUnsupportedMediaType, CodeUnsupported, message, ErrUnsupportedMedia)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}
