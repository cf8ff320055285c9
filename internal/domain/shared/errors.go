package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors.
// ErrNotFound deliberately covers both "does not exist" and "belongs to a
// different tenant": callers must never be able to distinguish the two.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Error codes for ledger business-rule violations
const (
	CodeNotFound              = "NOT_FOUND"
	CodeInvalidState          = "INVALID_STATE"
	CodeAmountExceedsResidual = "AMOUNT_EXCEEDS_RESIDUAL"
	CodeIntegrityViolation    = "INTEGRITY_VIOLATION"
)

// NewIntegrityViolation creates an integrity violation error.
// These are fatal for the operation: the transaction must be aborted and the
// detail logged server-side, never coerced into a "best guess" state.
func NewIntegrityViolation(message string) *DomainError {
	return NewDomainError(CodeIntegrityViolation, message)
}

// IsNotFound reports whether err is the shared not-found error
func IsNotFound(err error) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == CodeNotFound
}
