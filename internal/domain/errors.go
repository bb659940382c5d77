package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is wrapped by every entity-specific not-found error.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is wrapped by ValidationError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateStudentID is returned by stores when a student id is already taken.
	ErrDuplicateStudentID = errors.New("student id already issued")
	// ErrStudentNotApproved rejects live quiz submissions from pending registrations.
	ErrStudentNotApproved = errors.New("student not approved")

	ErrRegistrationNotFound = fmt.Errorf("registration %w", ErrNotFound)
	ErrQuestionNotFound     = fmt.Errorf("question %w", ErrNotFound)
	ErrScoreNotFound        = fmt.Errorf("score record %w", ErrNotFound)
	ErrProjectNotFound      = fmt.Errorf("project %w", ErrNotFound)
	ErrClaimNotFound        = fmt.Errorf("project claim %w", ErrNotFound)
	ErrStaffNotFound        = fmt.Errorf("staff %w", ErrNotFound)
)

// ValidationError rejects a payload before any store mutation.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	msg := "validation failed"
	if len(e.Fields) > 0 {
		msg += ": " + strings.Join(e.Fields, ", ")
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid builds a ValidationError for the given fields.
func Invalid(reason string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: reason}
}

// SequencingError means no valid student id could be issued.
type SequencingError struct {
	Attempts int
	Err      error
}

func (e *SequencingError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("issue student id after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("issue student id: %v", e.Err)
}

func (e *SequencingError) Unwrap() error { return e.Err }

// DataCorruptionError means stored serialized data failed to parse.
type DataCorruptionError struct {
	Entity string
	ID     string
	Err    error
}

func (e *DataCorruptionError) Error() string {
	return fmt.Sprintf("corrupt %s %s: %v", e.Entity, e.ID, e.Err)
}

func (e *DataCorruptionError) Unwrap() error { return e.Err }
