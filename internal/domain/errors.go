package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity cannot be located
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found with ID: %s", e.Entity, e.ID)
}

// ErrAlreadyEnrolled is returned when a contact already has an active or
// paused enrollment in the automation. It is how the store's uniqueness
// constraint surfaces to callers of Enroll.
type ErrAlreadyEnrolled struct {
	AutomationID string
	ContactEmail string
}

func (e *ErrAlreadyEnrolled) Error() string {
	return fmt.Sprintf("contact %s is already enrolled in automation %s", e.ContactEmail, e.AutomationID)
}

// IsAlreadyEnrolled reports whether err is an ErrAlreadyEnrolled
func IsAlreadyEnrolled(err error) bool {
	var target *ErrAlreadyEnrolled
	return errors.As(err, &target)
}

// ErrTemplateNotFound is returned by the template renderer for unknown templates
type ErrTemplateNotFound struct {
	TemplateID string
}

func (e *ErrTemplateNotFound) Error() string {
	return fmt.Sprintf("template not found: %s", e.TemplateID)
}

// PermanentError marks a step failure that retrying cannot fix: unknown
// field names, missing templates, malformed step configuration. The retry
// controller moves the execution straight to failed_permanently.
type PermanentError struct {
	Reason string
	Err    error
}

func (e *PermanentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// NewPermanentError wraps err as a permanent failure
func NewPermanentError(reason string, err error) *PermanentError {
	return &PermanentError{Reason: reason, Err: err}
}

// IsPermanent reports whether err carries a PermanentError anywhere in its
// chain. A template that does not exist is permanent regardless of how it
// was wrapped on the way up.
func IsPermanent(err error) bool {
	var perm *PermanentError
	if errors.As(err, &perm) {
		return true
	}
	var tmpl *ErrTemplateNotFound
	return errors.As(err, &tmpl)
}
