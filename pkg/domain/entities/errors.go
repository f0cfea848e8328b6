package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching across layers
var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientStock is matched by every *InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidTransition is matched by every *InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a document was changed by someone else
	// between read and write.
	ErrConflict = errors.New("concurrent update conflict")
)

// ValidationError reports a missing or invalid field
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InsufficientStockError reports an out movement that would drive available
// stock below zero
type InsufficientStockError struct {
	SparePartID string
	LocationID  string
	Requested   Quantity
	Available   Quantity
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for part %s at %s: requested %d, available %d",
		e.SparePartID, e.LocationID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidTransitionError reports a state machine violation, including
// attempts to mutate a document that has reached a terminal state
type InvalidTransitionError struct {
	Kind   DocumentKind
	ID     string
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	subject := string(e.Kind)
	if e.ID != "" {
		subject = fmt.Sprintf("%s %s", e.Kind, e.ID)
	}
	if e.To == "" {
		return fmt.Sprintf("%s in status %s: %s", subject, e.From, e.Reason)
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s cannot move from %s to %s: %s", subject, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("%s cannot move from %s to %s", subject, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NotFoundError reports a referenced entity id that does not exist
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError reports an optimistic version mismatch on save
type ConflictError struct {
	Entity          string
	ID              string
	ExpectedVersion int
	ActualVersion   int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently (expected version %d, found %d)",
		e.Entity, e.ID, e.ExpectedVersion, e.ActualVersion)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
