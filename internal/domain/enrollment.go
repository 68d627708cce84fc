package domain

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"
)

//go:generate mockgen -destination mocks/mock_enrollment_repository.go -package mocks github.com/dripkit/dripkit/internal/domain EnrollmentRepository

// EnrollmentStatus represents the status of a contact's run through an automation
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusPaused    EnrollmentStatus = "paused"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
	EnrollmentStatusFailed    EnrollmentStatus = "failed"
)

// IsValid checks if the enrollment status is valid
func (s EnrollmentStatus) IsValid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusPaused, EnrollmentStatusCompleted,
		EnrollmentStatusCancelled, EnrollmentStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status is final. Terminal enrollments never
// get new executions.
func (s EnrollmentStatus) IsTerminal() bool {
	switch s {
	case EnrollmentStatusCompleted, EnrollmentStatusCancelled, EnrollmentStatusFailed:
		return true
	default:
		return false
	}
}

// Enrollment binds one contact to one automation run
type Enrollment struct {
	ID               string           `json:"id"`
	AutomationID     string           `json:"automation_id"`
	ContactEmail     string           `json:"contact_email"`
	Status           EnrollmentStatus `json:"status"`
	CurrentStepOrder int              `json:"current_step_order"`
	EnrolledAt       time.Time        `json:"enrolled_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	CancelledAt      *time.Time       `json:"cancelled_at,omitempty"`
	FailedAt         *time.Time       `json:"failed_at,omitempty"`
	ExitReason       *string          `json:"exit_reason,omitempty"`
	Context          map[string]any   `json:"context,omitempty"`
}

var enrollmentEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate validates the enrollment
func (e *Enrollment) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}

	if e.AutomationID == "" {
		return fmt.Errorf("automation_id is required")
	}

	if e.ContactEmail == "" {
		return fmt.Errorf("contact_email is required")
	}
	if !enrollmentEmailRegex.MatchString(e.ContactEmail) {
		return fmt.Errorf("invalid email format")
	}

	if !e.Status.IsValid() {
		return fmt.Errorf("invalid enrollment status: %s", e.Status)
	}

	if e.CurrentStepOrder < 0 {
		return fmt.Errorf("current_step_order cannot be negative")
	}

	return nil
}

// EnrollmentFilter defines filtering options for listing enrollments
type EnrollmentFilter struct {
	AutomationID string
	ContactEmail string
	Status       []EnrollmentStatus
	Limit        int
	Offset       int
}

// EnrollmentRepository defines the interface for enrollment persistence.
// Create relies on a partial unique index over (automation_id, contact_email)
// restricted to active/paused rows; a violation surfaces as ErrAlreadyEnrolled
// so concurrent enroll attempts are decided by the store, not by a prior read.
type EnrollmentRepository interface {
	Create(ctx context.Context, workspaceID string, enrollment *Enrollment) error
	CreateTx(ctx context.Context, tx *sql.Tx, workspaceID string, enrollment *Enrollment) error
	GetByID(ctx context.Context, workspaceID, id string) (*Enrollment, error)
	GetByAutomationAndEmail(ctx context.Context, workspaceID, automationID, email string) (*Enrollment, error)
	List(ctx context.Context, workspaceID string, filter EnrollmentFilter) ([]*Enrollment, int, error)
	Update(ctx context.Context, workspaceID string, enrollment *Enrollment) error
}

//go:generate mockgen -destination mocks/mock_enrollment_service.go -package mocks github.com/dripkit/dripkit/internal/domain EnrollmentService

// EnrollmentService defines the interface for enrollment lifecycle operations
type EnrollmentService interface {
	Enroll(ctx context.Context, workspaceID, automationID, contactEmail string, triggerContext map[string]any) (*Enrollment, error)
	Cancel(ctx context.Context, workspaceID, enrollmentID, reason string) error
	Pause(ctx context.Context, workspaceID, enrollmentID string) error
	Resume(ctx context.Context, workspaceID, enrollmentID string) error
	Complete(ctx context.Context, workspaceID, enrollmentID, reason string) error
	History(ctx context.Context, workspaceID, enrollmentID string) ([]*Execution, error)
}
