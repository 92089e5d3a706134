package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds. Domain errors unwrap to one of these so handlers can map any
// service error to a status code with errors.Is.
var (
	ErrUnauthenticated = stderrors.New("unauthenticated")
	ErrForbidden       = stderrors.New("forbidden")
	ErrNotFound        = stderrors.New("not found")
	ErrValidation      = stderrors.New("validation error")
	ErrConflict        = stderrors.New("conflict")
	ErrStoreFailure    = stderrors.New("store failure")

	// ErrServiceNotConfigured marks optional integrations that are switched off.
	ErrServiceNotConfigured = stderrors.New("service not configured")
)

// DomainError carries a user-facing message and the kind it belongs to.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

// New creates a DomainError of the given kind.
func New(kind error, message string) error {
	return &DomainError{Kind: kind, Message: message}
}

// Newf creates a DomainError with a formatted message.
func Newf(kind error, format string, args ...any) error {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// StoreFailure wraps a persistence error so it maps to a generic 500 while
// keeping the cause available to errors.Is and logs.
func StoreFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreFailure, op, err)
}

// StatusOf returns the HTTP status and error code for err.
func StatusOf(err error) (int, string) {
	switch {
	case stderrors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case stderrors.Is(err, ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case stderrors.Is(err, ErrValidation):
		return http.StatusBadRequest, ErrCodeInvalidInput
	case stderrors.Is(err, ErrConflict):
		return http.StatusConflict, ErrCodeConflict
	case stderrors.Is(err, ErrServiceNotConfigured):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// Respond writes err using the status its kind maps to. Store failures and
// unknown errors are answered with a generic message.
func Respond(c *gin.Context, err error) {
	status, code := StatusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	RespondWithError(c, status, NewAPIError(code, message))
}
