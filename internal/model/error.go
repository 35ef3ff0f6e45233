package model

import "errors"

// Standard error codes for API responses
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business-rule violation detected by the engine. Details
// carries field-level context such as the offending fields or the allowed
// transition set.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WithDetails attaches field-level context and returns the error.
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	e.Details = details
	return e
}

// Constructors for the error taxonomy. Handlers map codes to HTTP statuses.

func ValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

func ForbiddenError(message string) *DomainError {
	return NewDomainError(ErrCodeForbidden, message)
}

func NotFoundError(message string) *DomainError {
	return NewDomainError(ErrCodeNotFound, message)
}

func ConflictError(message string) *DomainError {
	return NewDomainError(ErrCodeConflict, message)
}

func InvalidTransitionError(message string, allowed []OrderStatus) *DomainError {
	return NewDomainError(ErrCodeInvalidTransition, message).
		WithDetails(map[string]any{"allowed_transitions": allowed})
}

// AsDomainError unwraps err to a *DomainError, or returns nil if err is
// infrastructure-caused and should surface as an internal error.
func AsDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// Common domain errors
var (
	ErrOrderNotFound    = NotFoundError("order not found")
	ErrLineItemNotFound = NotFoundError("product not found in order")
	ErrNoFieldsToUpdate = ValidationError("no fields to update")
	ErrOrderNotMutable  = ConflictError("order contents can only change while the order is in process")
	ErrLastLineItem     = ConflictError("cannot remove the only line item; delete the whole order instead")
)
