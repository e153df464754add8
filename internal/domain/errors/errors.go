package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrConflict            = errors.New("conflict")
	ErrTokenNotAvailable   = errors.New("token not available")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrNotVerified         = errors.New("account not verified")
	ErrTransient           = errors.New("transient store error")
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
	return NewAppError(http.StatusNotFound, "not_found", message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "invalid_input", message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "unauthorized", message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "forbidden", message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, "conflict", message, ErrConflict)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal_error", "internal server error", err)
}

// FromDomain maps a sentinel domain error to an AppError with the right
// HTTP status. Unknown errors become 500s.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return NotFound(err.Error())
	case errors.Is(err, ErrInvalidInput):
		return BadRequest(err.Error())
	case errors.Is(err, ErrAlreadyExists):
		return Conflict(err.Error())
	case errors.Is(err, ErrConflict):
		return Conflict(err.Error())
	case errors.Is(err, ErrTokenNotAvailable):
		return NewAppError(http.StatusConflict, "token_not_available", err.Error(), err)
	case errors.Is(err, ErrInsufficientBalance):
		return NewAppError(http.StatusUnprocessableEntity, "insufficient_balance", err.Error(), err)
	case errors.Is(err, ErrInvalidOrExpiredCode):
		return NewAppError(http.StatusBadRequest, "invalid_or_expired_code", err.Error(), err)
	case errors.Is(err, ErrNotVerified):
		return Forbidden(err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return Unauthorized(err.Error())
	case errors.Is(err, ErrForbidden):
		return Forbidden(err.Error())
	default:
		return InternalError(err)
	}
}

// NewError wraps a sentinel with a custom message, keeping the HTTP shape
// the sentinel maps to.
func NewError(message string, err error) error {
	mapped := FromDomain(err)
	return &AppError{
		Status:  mapped.Status,
		Code:    mapped.Code,
		Message: message,
		Err:     err,
	}
}
