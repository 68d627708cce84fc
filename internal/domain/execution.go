package domain

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_execution_repository.go -package mocks github.com/dripkit/dripkit/internal/domain ExecutionRepository

// ExecutionStatus represents the status of one step execution
type ExecutionStatus string

const (
	ExecutionStatusPending           ExecutionStatus = "pending"
	ExecutionStatusWaiting           ExecutionStatus = "waiting"
	ExecutionStatusProcessing        ExecutionStatus = "processing"
	ExecutionStatusCompleted         ExecutionStatus = "completed"
	ExecutionStatusFailed            ExecutionStatus = "failed"
	ExecutionStatusFailedPermanently ExecutionStatus = "failed_permanently"
	ExecutionStatusCancelled         ExecutionStatus = "cancelled"
)

// IsValid checks if the execution status is valid
func (s ExecutionStatus) IsValid() bool {
	switch s {
	case ExecutionStatusPending, ExecutionStatusWaiting, ExecutionStatusProcessing,
		ExecutionStatusCompleted, ExecutionStatusFailed,
		ExecutionStatusFailedPermanently, ExecutionStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status is final. An execution never
// transitions out of a terminal status.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailedPermanently, ExecutionStatusCancelled:
		return true
	default:
		return false
	}
}

// Execution is one attempt to run one step for one enrollment. The row is
// the durable resumption point: it is claimed with an atomic
// pending/waiting -> processing transition, so at most one worker ever
// processes it.
type Execution struct {
	ID           string          `json:"id"`
	EnrollmentID string          `json:"enrollment_id"`
	StepID       string          `json:"step_id"`
	StepOrder    int             `json:"step_order"`
	Status       ExecutionStatus `json:"status"`
	ScheduledAt  time.Time       `json:"scheduled_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	Attempts     int             `json:"attempts"`
	Error        *string         `json:"error,omitempty"`
	Result       map[string]any  `json:"result,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Validate validates the execution
func (e *Execution) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}

	if e.EnrollmentID == "" {
		return fmt.Errorf("enrollment_id is required")
	}

	if e.StepID == "" {
		return fmt.Errorf("step_id is required")
	}

	if !e.Status.IsValid() {
		return fmt.Errorf("invalid execution status: %s", e.Status)
	}

	if e.Attempts < 0 {
		return fmt.Errorf("attempts cannot be negative")
	}

	return nil
}

// DueExecution is an execution claimed by the scheduler, annotated with the
// workspace it belongs to and the status it held before the claim. The prior
// status is what distinguishes a wait step firing (waiting) from its first
// pass (pending).
type DueExecution struct {
	WorkspaceID string
	PrevStatus  ExecutionStatus
	Execution
}

// ExecutionRepository defines the interface for execution persistence
type ExecutionRepository interface {
	Create(ctx context.Context, workspaceID string, execution *Execution) error
	CreateTx(ctx context.Context, tx *sql.Tx, workspaceID string, execution *Execution) error
	GetByID(ctx context.Context, workspaceID, id string) (*Execution, error)
	ListByEnrollment(ctx context.Context, workspaceID, enrollmentID string) ([]*Execution, error)
	Update(ctx context.Context, workspaceID string, execution *Execution) error

	// ClaimDue atomically moves up to limit due pending/waiting/failed
	// executions to processing and returns them. Safe to run from multiple
	// workers.
	ClaimDue(ctx context.Context, before time.Time, limit int) ([]*DueExecution, error)

	// Claim attempts to claim a single pending execution for immediate
	// in-pass dispatch. Returns false when another worker got there first or
	// the execution left pending.
	Claim(ctx context.Context, workspaceID, id string) (bool, error)

	// CancelPendingForEnrollment marks pending/waiting executions of an
	// enrollment cancelled. Rows already terminal or processing are left
	// alone.
	CancelPendingForEnrollment(ctx context.Context, workspaceID, enrollmentID string) (int64, error)

	// ReapTerminal deletes completed executions older than completedBefore
	// and failed ones older than failedBefore. Housekeeping only.
	ReapTerminal(ctx context.Context, completedBefore, failedBefore time.Time) (int64, error)

	// ResetStale moves processing executions whose started_at is older than
	// olderThan to failed with a synthetic timeout error and a bumped attempt
	// count, so the normal retry path picks them up after a crash.
	ResetStale(ctx context.Context, olderThan time.Time) (int64, error)
}
