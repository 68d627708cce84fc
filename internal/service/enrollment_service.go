package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/dripkit/dripkit/pkg/logger"
	"github.com/google/uuid"
)

// EnrollmentService implements domain.EnrollmentService. Enroll is the single
// entry point putting a contact into an automation; the uniqueness constraint
// in the store decides races, not a prior read.
type EnrollmentService struct {
	automationRepo domain.AutomationRepository
	enrollmentRepo domain.EnrollmentRepository
	executionRepo  domain.ExecutionRepository
	contactRepo    domain.ContactRepository
	auditSink      domain.AuditSink
	logger         logger.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	automationRepo domain.AutomationRepository,
	enrollmentRepo domain.EnrollmentRepository,
	executionRepo domain.ExecutionRepository,
	contactRepo domain.ContactRepository,
	auditSink domain.AuditSink,
	logger logger.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		automationRepo: automationRepo,
		enrollmentRepo: enrollmentRepo,
		executionRepo:  executionRepo,
		contactRepo:    contactRepo,
		auditSink:      auditSink,
		logger:         logger,
	}
}

// Enroll creates an active enrollment and the pending execution for the
// automation's first step, in one transaction. A contact already active or
// paused in the automation gets ErrAlreadyEnrolled.
func (s *EnrollmentService) Enroll(ctx context.Context, workspaceID, automationID, contactEmail string, triggerContext map[string]any) (*domain.Enrollment, error) {
	automation, err := s.automationRepo.GetByID(ctx, workspaceID, automationID)
	if err != nil {
		return nil, err
	}

	if automation.Status != domain.AutomationStatusActive {
		return nil, fmt.Errorf("automation %s is not active", automationID)
	}

	firstStep := automation.FirstStep()
	if firstStep == nil {
		return nil, fmt.Errorf("automation %s has no steps", automationID)
	}

	contact, err := s.contactRepo.GetByEmail(ctx, workspaceID, contactEmail)
	if err != nil {
		return nil, err
	}
	if !contact.IsEligible() {
		return nil, fmt.Errorf("contact %s is not eligible for enrollment", contactEmail)
	}

	now := time.Now().UTC()
	enrollment := &domain.Enrollment{
		ID:               uuid.New().String(),
		AutomationID:     automationID,
		ContactEmail:     contactEmail,
		Status:           domain.EnrollmentStatusActive,
		CurrentStepOrder: firstStep.Order,
		EnrolledAt:       now,
		Context:          triggerContext,
	}
	if err := enrollment.Validate(); err != nil {
		return nil, fmt.Errorf("invalid enrollment: %w", err)
	}

	execution := &domain.Execution{
		ID:           uuid.New().String(),
		EnrollmentID: enrollment.ID,
		StepID:       firstStep.ID,
		StepOrder:    firstStep.Order,
		Status:       domain.ExecutionStatusPending,
		ScheduledAt:  now,
		CreatedAt:    now,
	}

	err = s.automationRepo.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.enrollmentRepo.CreateTx(ctx, tx, workspaceID, enrollment); err != nil {
			return err
		}
		return s.executionRepo.CreateTx(ctx, tx, workspaceID, execution)
	})
	if err != nil {
		if domain.IsAlreadyEnrolled(err) {
			return nil, err
		}
		s.logger.WithFields(map[string]interface{}{
			"workspace_id":  workspaceID,
			"automation_id": automationID,
			"contact_email": contactEmail,
			"error":         err.Error(),
		}).Error("Failed to enroll contact")
		return nil, fmt.Errorf("failed to enroll contact: %w", err)
	}

	if err := s.automationRepo.IncrementStat(ctx, workspaceID, automationID, "enrolled"); err != nil {
		s.logger.WithField("automation_id", automationID).Warn("Failed to increment enrolled stat: " + err.Error())
	}

	s.recordAudit(ctx, workspaceID, "enrollment_started", map[string]any{
		"enrollment_id": enrollment.ID,
		"automation_id": automationID,
		"contact_email": contactEmail,
	})

	return enrollment, nil
}

// Cancel permanently removes an enrollment from its automation. In-flight
// processing executions are left to finish; pending and waiting ones are
// cancelled so no further step runs.
func (s *EnrollmentService) Cancel(ctx context.Context, workspaceID, enrollmentID, reason string) error {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, workspaceID, enrollmentID)
	if err != nil {
		return err
	}

	if enrollment.Status.IsTerminal() {
		return fmt.Errorf("enrollment %s is already %s", enrollmentID, enrollment.Status)
	}

	now := time.Now().UTC()
	enrollment.Status = domain.EnrollmentStatusCancelled
	enrollment.CancelledAt = &now
	if reason != "" {
		enrollment.ExitReason = &reason
	}

	if err := s.enrollmentRepo.Update(ctx, workspaceID, enrollment); err != nil {
		return err
	}

	cancelled, err := s.executionRepo.CancelPendingForEnrollment(ctx, workspaceID, enrollmentID)
	if err != nil {
		return fmt.Errorf("failed to cancel pending executions: %w", err)
	}

	if err := s.automationRepo.IncrementStat(ctx, workspaceID, enrollment.AutomationID, "cancelled"); err != nil {
		s.logger.WithField("automation_id", enrollment.AutomationID).Warn("Failed to increment cancelled stat: " + err.Error())
	}

	s.logger.WithFields(map[string]interface{}{
		"workspace_id":         workspaceID,
		"enrollment_id":        enrollmentID,
		"cancelled_executions": cancelled,
	}).Info("Enrollment cancelled")

	s.recordAudit(ctx, workspaceID, "enrollment_cancelled", map[string]any{
		"enrollment_id": enrollmentID,
		"automation_id": enrollment.AutomationID,
		"reason":        reason,
	})

	return nil
}

// Pause suspends an enrollment. Its executions stay in place; the scheduler
// re-defers them until the enrollment resumes.
func (s *EnrollmentService) Pause(ctx context.Context, workspaceID, enrollmentID string) error {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, workspaceID, enrollmentID)
	if err != nil {
		return err
	}

	if enrollment.Status != domain.EnrollmentStatusActive {
		return fmt.Errorf("only active enrollments can be paused, current status: %s", enrollment.Status)
	}

	enrollment.Status = domain.EnrollmentStatusPaused
	return s.enrollmentRepo.Update(ctx, workspaceID, enrollment)
}

// Resume reactivates a paused enrollment
func (s *EnrollmentService) Resume(ctx context.Context, workspaceID, enrollmentID string) error {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, workspaceID, enrollmentID)
	if err != nil {
		return err
	}

	if enrollment.Status != domain.EnrollmentStatusPaused {
		return fmt.Errorf("only paused enrollments can be resumed, current status: %s", enrollment.Status)
	}

	enrollment.Status = domain.EnrollmentStatusActive
	return s.enrollmentRepo.Update(ctx, workspaceID, enrollment)
}

// Complete marks an enrollment completed, used when the last step finishes
// or a condition branch terminates
func (s *EnrollmentService) Complete(ctx context.Context, workspaceID, enrollmentID, reason string) error {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, workspaceID, enrollmentID)
	if err != nil {
		return err
	}

	if enrollment.Status.IsTerminal() {
		return fmt.Errorf("enrollment %s is already %s", enrollmentID, enrollment.Status)
	}

	now := time.Now().UTC()
	enrollment.Status = domain.EnrollmentStatusCompleted
	enrollment.CompletedAt = &now
	if reason != "" {
		enrollment.ExitReason = &reason
	}

	if err := s.enrollmentRepo.Update(ctx, workspaceID, enrollment); err != nil {
		return err
	}

	if err := s.automationRepo.IncrementStat(ctx, workspaceID, enrollment.AutomationID, "completed"); err != nil {
		s.logger.WithField("automation_id", enrollment.AutomationID).Warn("Failed to increment completed stat: " + err.Error())
	}

	s.recordAudit(ctx, workspaceID, "enrollment_completed", map[string]any{
		"enrollment_id": enrollmentID,
		"automation_id": enrollment.AutomationID,
		"reason":        reason,
	})

	return nil
}

// History returns the step executions of an enrollment in order, for
// inspecting where a contact is and what already ran
func (s *EnrollmentService) History(ctx context.Context, workspaceID, enrollmentID string) ([]*domain.Execution, error) {
	if _, err := s.enrollmentRepo.GetByID(ctx, workspaceID, enrollmentID); err != nil {
		return nil, err
	}
	return s.executionRepo.ListByEnrollment(ctx, workspaceID, enrollmentID)
}

// recordAudit writes best effort audit events. Sink failures are logged,
// never propagated.
func (s *EnrollmentService) recordAudit(ctx context.Context, workspaceID, eventType string, payload map[string]any) {
	if s.auditSink == nil {
		return
	}
	if err := s.auditSink.Record(ctx, workspaceID, eventType, payload); err != nil {
		s.logger.WithField("event_type", eventType).Warn("Failed to record audit event: " + err.Error())
	}
}
