package orders

import (
	"fmt"
	"strings"
)

// The service returns typed errors for every expected failure so transports
// can map them to response codes without string matching. Unexpected storage
// faults are wrapped in InternalError.

// ValidationError names every offending field, not just the first.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("invalid request: %s", strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

func Invalid(reason string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: reason}
}

// NotFoundError marks an absent referenced entity ("product", "order").
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func NotFound(entity string) *NotFoundError { return &NotFoundError{Entity: entity} }

// ConflictError marks a business-rule violation. For insufficient stock the
// requested and available amounts are carried for the client message.
type ConflictError struct {
	Reason    string // insufficient_stock | not_cancellable | invalid_transition
	Requested int
	Available int
}

func (e *ConflictError) Error() string {
	if e.Reason == ReasonInsufficientStock {
		return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
	}
	return e.Reason
}

const (
	ReasonInsufficientStock = "insufficient_stock"
	ReasonNotCancellable    = "not_cancellable"
	ReasonInvalidTransition = "invalid_transition"
	ReasonBelowMinimum      = "below_minimum"
	ReasonInvalidStatus     = "invalid_status"
)

// InternalError wraps unexpected storage or infrastructure faults. The
// transport sanitizes the message outside development.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *InternalError) Unwrap() error { return e.Err }

func internal(op string, err error) *InternalError { return &InternalError{Op: op, Err: err} }
