package booking

import "fmt"

// ConflictKind distinguishes why a write was rejected.
type ConflictKind string

const (
	ConflictOverlap   ConflictKind = "OVERLAP"
	ConflictDuplicate ConflictKind = "DUPLICATE"
)

// ValidationError reports malformed or out-of-policy input, detected before
// any write. The caller can recover by correcting the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports a real business conflict: the requested slot is no
// longer available (OVERLAP) or the exact same submission already exists
// (DUPLICATE).
type ConflictError struct {
	Kind   ConflictKind
	UnitID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict on unit %s", e.Kind, e.UnitID)
}

// NotFoundError reports an unknown unit or reservation id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// TransientError wraps an infrastructure failure that survived the bounded
// retry loop. Callers may try again shortly.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient store failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
