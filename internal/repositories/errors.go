package repositories

import "fmt"

// ErrorCode categorises persistence failures for the service layer.
type ErrorCode string

const (
	// ErrorCodeNotFound indicates the requested row is absent or owned by
	// another user.
	ErrorCodeNotFound ErrorCode = "not_found"
	// ErrorCodeConflict indicates a uniqueness or referential violation.
	ErrorCodeConflict ErrorCode = "conflict"
	// ErrorCodeInsufficientStock indicates a conditional stock decrement
	// could not be satisfied.
	ErrorCodeInsufficientStock ErrorCode = "insufficient_stock"
	// ErrorCodeUnavailable indicates a connectivity or timeout failure.
	ErrorCodeUnavailable ErrorCode = "unavailable"
	// ErrorCodeInternal covers uncategorised persistence failures.
	ErrorCodeInternal ErrorCode = "internal"
)

// Error is the concrete RepositoryError implementation returned by the
// postgres repositories.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying driver error.
func (e *Error) Unwrap() error { return e.Cause }

// IsNotFound implements RepositoryError.
func (e *Error) IsNotFound() bool { return e.Code == ErrorCodeNotFound }

// IsConflict implements RepositoryError.
func (e *Error) IsConflict() bool { return e.Code == ErrorCodeConflict }

// IsInsufficientStock implements RepositoryError.
func (e *Error) IsInsufficientStock() bool { return e.Code == ErrorCodeInsufficientStock }

// IsUnavailable implements RepositoryError.
func (e *Error) IsUnavailable() bool { return e.Code == ErrorCodeUnavailable }

// NewNotFound builds a not-found repository error.
func NewNotFound(message string) *Error {
	return &Error{Code: ErrorCodeNotFound, Message: message}
}

// NewConflict builds a conflict repository error.
func NewConflict(message string, cause error) *Error {
	return &Error{Code: ErrorCodeConflict, Message: message, Cause: cause}
}

// NewInsufficientStock builds an insufficient-stock repository error.
func NewInsufficientStock(message string) *Error {
	return &Error{Code: ErrorCodeInsufficientStock, Message: message}
}

// NewInternal wraps an uncategorised persistence failure.
func NewInternal(message string, cause error) *Error {
	return &Error{Code: ErrorCodeInternal, Message: message, Cause: cause}
}
