package shared

import "fmt"

// Error codes shared by every bounded context
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeConflict           = "CONFLICT"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
	CodeTransient          = "TRANSIENT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so callers can test
// errors.Is(err, shared.ErrNotFound) against errors built with a custom message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail returns a copy of the error with an extra detail attached
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// Retryable reports whether the failed operation left no trace and may be retried as-is
func (e *DomainError) Retryable() bool {
	return e.Code == CodeTransient
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidArgument    = NewDomainError(CodeInvalidArgument, "Invalid argument")
	ErrConflict           = NewDomainError(CodeConflict, "Resource is not in a state that allows this operation")
	ErrInsufficientStock  = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInvariantViolation = NewDomainError(CodeInvariantViolation, "Internal consistency check failed")
	ErrTransient          = NewDomainError(CodeTransient, "Temporary storage failure, please retry")
)

// NotFoundError builds a NOT_FOUND error for the named resource
func NotFoundError(resource string, id fmt.Stringer) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", resource, id)).
		WithDetail("resource", resource).
		WithDetail("id", id.String())
}

// InvalidArgumentError builds an INVALID_ARGUMENT error
func InvalidArgumentError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidArgument, fmt.Sprintf(format, args...))
}

// ConflictError builds a CONFLICT error
func ConflictError(format string, args ...any) *DomainError {
	return NewDomainError(CodeConflict, fmt.Sprintf(format, args...))
}

// InvariantViolationError builds an INVARIANT_VIOLATION error
func InvariantViolationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvariantViolation, fmt.Sprintf(format, args...))
}

// TransientError wraps an infrastructure failure that left state unchanged
func TransientError(op string, cause error) *DomainError {
	return NewDomainError(CodeTransient, fmt.Sprintf("%s failed: %v", op, cause)).
		WithDetail("operation", op)
}
