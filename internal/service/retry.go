package service

import (
	"context"
	"time"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/dripkit/dripkit/pkg/logger"
)

// RetryController owns the failure accounting for step executions. Failures
// never escape past it into the scheduler loop: every outcome lands on the
// execution row as a status plus schedule.
type RetryController struct {
	executionRepo  domain.ExecutionRepository
	automationRepo domain.AutomationRepository
	notifier       domain.NotificationService
	auditSink      domain.AuditSink
	logger         logger.Logger

	maxAttempts int
	backoff     []time.Duration
	fallback    time.Duration
	now         func() time.Time
}

// NewRetryController creates a new RetryController
func NewRetryController(
	executionRepo domain.ExecutionRepository,
	automationRepo domain.AutomationRepository,
	notifier domain.NotificationService,
	auditSink domain.AuditSink,
	logger logger.Logger,
	maxAttempts int,
	backoff []time.Duration,
	fallback time.Duration,
) *RetryController {
	return &RetryController{
		executionRepo:  executionRepo,
		automationRepo: automationRepo,
		notifier:       notifier,
		auditSink:      auditSink,
		logger:         logger,
		maxAttempts:    maxAttempts,
		backoff:        backoff,
		fallback:       fallback,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// BackoffDelay returns the delay before the given retry attempt. Attempt
// numbers start at 1; indexes past the schedule fall back to the fixed
// system-level delay.
func (rc *RetryController) BackoffDelay(attempt int) time.Duration {
	idx := attempt - 1
	if idx >= 0 && idx < len(rc.backoff) {
		return rc.backoff[idx]
	}
	return rc.fallback
}

// HandleFailure records a failed handler invocation on the execution row.
// Permanent errors and exhausted attempts go to failed_permanently; anything
// else is rescheduled as failed with the next backoff delay, to be claimed
// again by the scheduler.
func (rc *RetryController) HandleFailure(ctx context.Context, workspaceID string, enrollment *domain.Enrollment, execution *domain.Execution, stepErr error) {
	msg := stepErr.Error()
	execution.Error = &msg

	if domain.IsPermanent(stepErr) {
		rc.failPermanently(ctx, workspaceID, enrollment, execution)
		return
	}

	// the stale-processing sweep bumps attempts outside this path, so the
	// counter may already sit at the bound; never push it past
	if execution.Attempts < rc.maxAttempts {
		execution.Attempts++
	}
	if execution.Attempts >= rc.maxAttempts {
		rc.failPermanently(ctx, workspaceID, enrollment, execution)
		return
	}

	execution.Status = domain.ExecutionStatusFailed
	execution.ScheduledAt = rc.now().Add(rc.BackoffDelay(execution.Attempts))

	if err := rc.executionRepo.Update(ctx, workspaceID, execution); err != nil {
		rc.logger.WithFields(map[string]interface{}{
			"execution_id": execution.ID,
			"error":        err.Error(),
		}).Error("Failed to reschedule execution for retry")
		return
	}

	rc.logger.WithFields(map[string]interface{}{
		"execution_id": execution.ID,
		"attempts":     execution.Attempts,
		"scheduled_at": execution.ScheduledAt,
		"error":        msg,
	}).Warn("Step failed, scheduled for retry")
}

// AttemptsExhausted reports whether an execution has no retry attempts left
func (rc *RetryController) AttemptsExhausted(execution *domain.Execution) bool {
	return execution.Attempts >= rc.maxAttempts
}

// FailExhausted terminalizes an execution claimed with no attempts left.
// Crash recovery sweeps burn attempts without a handler invocation, so the
// bound has to be enforced again at dispatch.
func (rc *RetryController) FailExhausted(ctx context.Context, workspaceID string, enrollment *domain.Enrollment, execution *domain.Execution) {
	if execution.Error == nil {
		msg := "retry attempts exhausted"
		execution.Error = &msg
	}
	rc.failPermanently(ctx, workspaceID, enrollment, execution)
}

// failPermanently marks the execution failed_permanently. The enrollment is
// left in its current status: the workflow branch halts without advancing,
// surfaced through the notification and audit collaborators.
func (rc *RetryController) failPermanently(ctx context.Context, workspaceID string, enrollment *domain.Enrollment, execution *domain.Execution) {
	now := rc.now()
	execution.Status = domain.ExecutionStatusFailedPermanently
	execution.CompletedAt = &now

	if err := rc.executionRepo.Update(ctx, workspaceID, execution); err != nil {
		rc.logger.WithFields(map[string]interface{}{
			"execution_id": execution.ID,
			"error":        err.Error(),
		}).Error("Failed to mark execution permanently failed")
		return
	}

	if enrollment != nil {
		if err := rc.automationRepo.IncrementStat(ctx, workspaceID, enrollment.AutomationID, "failed"); err != nil {
			rc.logger.WithField("automation_id", enrollment.AutomationID).Warn("Failed to increment failed stat: " + err.Error())
		}
	}

	if rc.notifier != nil {
		if err := rc.notifier.NotifyFailure(ctx, workspaceID, enrollment, execution); err != nil {
			rc.logger.WithField("execution_id", execution.ID).Warn("Failed to send failure notification: " + err.Error())
		}
	}

	if rc.auditSink != nil {
		payload := map[string]any{
			"execution_id": execution.ID,
			"step_id":      execution.StepID,
			"attempts":     execution.Attempts,
		}
		if enrollment != nil {
			payload["enrollment_id"] = enrollment.ID
			payload["automation_id"] = enrollment.AutomationID
		}
		if execution.Error != nil {
			payload["error"] = *execution.Error
		}
		if err := rc.auditSink.Record(ctx, workspaceID, "execution_failed_permanently", payload); err != nil {
			rc.logger.WithField("execution_id", execution.ID).Warn("Failed to record audit event: " + err.Error())
		}
	}
}
