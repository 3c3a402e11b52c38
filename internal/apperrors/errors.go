package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates that the debited account does not hold enough balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAuthorizationDenied indicates that the external authorizer refused a transfer.
var ErrAuthorizationDenied = errors.New("transfer not authorized")

// ErrAlreadyCompensated indicates a second refund or reversal of the same transaction.
var ErrAlreadyCompensated = errors.New("transaction already compensated")

// ErrForbidden indicates that the caller may not act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrOperational indicates an infrastructure failure (store, transport). Callers only see it opaquely.
var ErrOperational = errors.New("operational failure")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError. A nil err is allowed.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Operational wraps an infrastructure error so that it classifies as ErrOperational
// while keeping the original cause reachable through errors.Is/As.
func Operational(msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrOperational, msg, err)
}

// IsDomainError reports whether err is one of the caller-visible domain failures.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrNotFound, ErrInsufficientFunds, ErrAuthorizationDenied,
		ErrAlreadyCompensated, ErrDuplicate, ErrForbidden, ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// TransactionFailedError reports an operation whose transaction was persisted as failed.
// It unwraps to the domain sentinel that caused the failure.
type TransactionFailedError struct {
	TransactionID string
	Reason        string
	Err           error
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction %s failed (%s): %v", e.TransactionID, e.Reason, e.Err)
}

func (e *TransactionFailedError) Unwrap() error {
	return e.Err
}
