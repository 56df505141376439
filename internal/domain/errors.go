package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSlotConflict means the requested (date, time slot) is already held
	// by an active booking.
	ErrSlotConflict = errors.New("time slot is not available")

	ErrNotFound = errors.New("booking not found")

	// ErrInvalidTransition means the requested status is not a legal
	// successor of the booking's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrVersionConflict means a concurrent update won the race; the caller
	// should re-read and retry.
	ErrVersionConflict = errors.New("booking was modified concurrently")
)

type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError carries the ordered list of field failures for a rejected
// request. Validation is all-or-nothing: Fields is never empty.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Path, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
