package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlotTaken is returned when a booking write loses the race for a slot.
	// Callers should refresh availability and ask the patient to pick again.
	ErrSlotTaken = errors.New("slot is no longer available")

	// ErrInvalidTransition is returned when an appointment status change is
	// not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid appointment status transition")

	// ErrOverlap is returned when an availability entry overlaps an existing
	// one for the same doctor and weekday.
	ErrOverlap = errors.New("availability entry overlaps an existing entry")

	// ErrEmailTaken is returned when a registration reuses an email that
	// already belongs to another account.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrForbidden is returned when the acting user may not perform the
	// operation on the target record.
	ErrForbidden = errors.New("operation not permitted for this user")
)

// ValidationError describes a rejected field before any write is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
