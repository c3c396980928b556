package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("actor lacks the capability for this action")

	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrContractNotAuthorized = errors.New("carrier is not contract-authorized")

	// ErrUnavailable covers lock timeouts and store failures. Safe to retry,
	// no partial effects were applied.
	ErrUnavailable = errors.New("operation temporarily unavailable")

	ErrInvalidInput = errors.New("invalid input data")
	ErrInvalidToken = errors.New("invalid or expired token")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
