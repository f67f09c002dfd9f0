package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrConflict            ErrorCode = "CONFLICT"
	ErrNotFound            ErrorCode = "NOT_FOUND"
	ErrProviderAuth        ErrorCode = "PROVIDER_AUTH"
	ErrProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrInternalServer      ErrorCode = "INTERNAL_SERVER_ERROR"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode reports whether err is (or wraps) an AppError carrying code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
