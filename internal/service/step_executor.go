package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/dripkit/dripkit/pkg/logger"
	"github.com/google/uuid"
)

// RateLimitNamespace is the limiter namespace gating step dispatch per
// workspace
const RateLimitNamespace = "automation_dispatch"

// DispatchLimiter is the slice of the rate limiter the executor consumes
type DispatchLimiter interface {
	Allow(namespace, key string) bool
}

// StepExecutor runs claimed executions through their step handlers and
// advances enrollments. Handlers are a registry keyed by step type; the
// executor itself is a uniform state machine around them.
type StepExecutor struct {
	automationRepo domain.AutomationRepository
	enrollmentRepo domain.EnrollmentRepository
	executionRepo  domain.ExecutionRepository
	contactRepo    domain.ContactRepository
	enrollments    domain.EnrollmentService
	retry          *RetryController
	limiter        DispatchLimiter
	handlers       map[domain.StepType]StepHandler
	logger         logger.Logger

	// maxStepsPerPass bounds the in-pass successor loop so a long chain of
	// fast steps cannot monopolize a worker
	maxStepsPerPass int
	pausedDeferral  time.Duration
	now             func() time.Time
}

// NewStepExecutor creates a new StepExecutor
func NewStepExecutor(
	automationRepo domain.AutomationRepository,
	enrollmentRepo domain.EnrollmentRepository,
	executionRepo domain.ExecutionRepository,
	contactRepo domain.ContactRepository,
	enrollments domain.EnrollmentService,
	retry *RetryController,
	limiter DispatchLimiter,
	handlers map[domain.StepType]StepHandler,
	logger logger.Logger,
	maxStepsPerPass int,
	pausedDeferral time.Duration,
) *StepExecutor {
	if maxStepsPerPass <= 0 {
		maxStepsPerPass = 10
	}
	if pausedDeferral <= 0 {
		pausedDeferral = time.Minute
	}
	return &StepExecutor{
		automationRepo:  automationRepo,
		enrollmentRepo:  enrollmentRepo,
		executionRepo:   executionRepo,
		contactRepo:     contactRepo,
		enrollments:     enrollments,
		retry:           retry,
		limiter:         limiter,
		handlers:        handlers,
		logger:          logger,
		maxStepsPerPass: maxStepsPerPass,
		pausedDeferral:  pausedDeferral,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// ProcessDue runs one claimed execution and, while steps keep completing
// immediately, their successors within the same pass. The loop ends at a wait
// step, a failure, the enrollment finishing, or the per-pass bound.
func (e *StepExecutor) ProcessDue(ctx context.Context, due *domain.DueExecution) {
	execution := &due.Execution
	prevStatus := due.PrevStatus

	for i := 0; i < e.maxStepsPerPass; i++ {
		// never claim a successor this pass cannot run anymore
		allowClaim := i < e.maxStepsPerPass-1
		next := e.processOne(ctx, due.WorkspaceID, execution, prevStatus, allowClaim)
		if next == nil {
			return
		}
		execution = next
		prevStatus = domain.ExecutionStatusPending
	}
}

// processOne executes a single claimed execution. The returned execution, if
// any, is the already-claimed successor to run next in the same pass.
func (e *StepExecutor) processOne(ctx context.Context, workspaceID string, execution *domain.Execution, prevStatus domain.ExecutionStatus, allowClaim bool) *domain.Execution {
	enrollment, err := e.enrollmentRepo.GetByID(ctx, workspaceID, execution.EnrollmentID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			e.cancelExecution(ctx, workspaceID, execution)
			return nil
		}
		e.release(ctx, workspaceID, execution, prevStatus)
		return nil
	}

	switch {
	case enrollment.Status == domain.EnrollmentStatusActive:
		// proceed
	case enrollment.Status == domain.EnrollmentStatusPaused:
		e.deferExecution(ctx, workspaceID, execution, prevStatus)
		return nil
	default:
		// terminal enrollment, the execution should never run
		e.cancelExecution(ctx, workspaceID, execution)
		return nil
	}

	// an execution can arrive here already at the retry bound when the
	// stale-processing sweep kept failing it; run no side effect, terminalize
	if e.retry.AttemptsExhausted(execution) {
		e.retry.FailExhausted(ctx, workspaceID, enrollment, execution)
		return nil
	}

	automation, err := e.automationRepo.GetByID(ctx, workspaceID, enrollment.AutomationID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			e.cancelExecution(ctx, workspaceID, execution)
			return nil
		}
		e.release(ctx, workspaceID, execution, prevStatus)
		return nil
	}

	if automation.Status != domain.AutomationStatusActive {
		// paused automation: contacts freeze in place
		e.deferExecution(ctx, workspaceID, execution, prevStatus)
		return nil
	}

	contact, err := e.contactRepo.GetByEmail(ctx, workspaceID, enrollment.ContactEmail)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			e.cancelIneligible(ctx, workspaceID, enrollment, execution)
			return nil
		}
		e.release(ctx, workspaceID, execution, prevStatus)
		return nil
	}
	if !contact.IsEligible() {
		e.cancelIneligible(ctx, workspaceID, enrollment, execution)
		return nil
	}

	step := automation.GetStepByID(execution.StepID)
	if step == nil {
		e.retry.HandleFailure(ctx, workspaceID, enrollment, execution,
			domain.NewPermanentError(fmt.Sprintf("step %s no longer exists in automation %s", execution.StepID, automation.ID), nil))
		return nil
	}

	handler, ok := e.handlers[step.Type]
	if !ok {
		e.retry.HandleFailure(ctx, workspaceID, enrollment, execution,
			domain.NewPermanentError(fmt.Sprintf("no handler registered for step type %s", step.Type), nil))
		return nil
	}

	result, err := handler.Execute(ctx, &StepContext{
		WorkspaceID: workspaceID,
		Automation:  automation,
		Step:        step,
		Enrollment:  enrollment,
		Contact:     contact,
		Execution:   execution,
		PrevStatus:  prevStatus,
	})
	if err != nil {
		e.retry.HandleFailure(ctx, workspaceID, enrollment, execution, err)
		return nil
	}

	execution.Result = result.Result

	if result.WaitUntil != nil {
		execution.Status = domain.ExecutionStatusWaiting
		execution.ScheduledAt = *result.WaitUntil
		if err := e.executionRepo.Update(ctx, workspaceID, execution); err != nil {
			e.logger.WithField("execution_id", execution.ID).Error("Failed to park waiting execution: " + err.Error())
		}
		return nil
	}

	now := e.now()
	execution.Status = domain.ExecutionStatusCompleted
	execution.CompletedAt = &now
	if err := e.executionRepo.Update(ctx, workspaceID, execution); err != nil {
		e.logger.WithField("execution_id", execution.ID).Error("Failed to complete execution: " + err.Error())
		return nil
	}

	return e.advance(ctx, workspaceID, automation, enrollment, step, execution, result, allowClaim)
}

// advance resolves the next step and creates its execution. Returns the
// successor, claimed for immediate dispatch, when eligible.
func (e *StepExecutor) advance(ctx context.Context, workspaceID string, automation *domain.Automation, enrollment *domain.Enrollment, step *domain.Step, execution *domain.Execution, result *StepResult, allowClaim bool) *domain.Execution {
	var next *domain.Step
	if result.Branch {
		if result.BranchTargetID == nil {
			e.completeEnrollment(ctx, workspaceID, enrollment.ID, "branch_terminated")
			return nil
		}
		next = automation.GetStepByID(*result.BranchTargetID)
	} else {
		next = automation.NextStepAfter(step.Order)
	}

	if next == nil {
		e.completeEnrollment(ctx, workspaceID, enrollment.ID, "all_steps_completed")
		return nil
	}

	// re-read before creating the successor: a cancellation that landed while
	// the side effect ran must stop the enrollment here
	current, err := e.enrollmentRepo.GetByID(ctx, workspaceID, enrollment.ID)
	if err != nil {
		e.logger.WithField("enrollment_id", enrollment.ID).Error("Failed to re-check enrollment before advancing: " + err.Error())
		return nil
	}
	if current.Status != domain.EnrollmentStatusActive {
		e.logger.WithFields(map[string]interface{}{
			"enrollment_id": enrollment.ID,
			"status":        current.Status,
		}).Info("Enrollment no longer active, not advancing")
		return nil
	}

	current.CurrentStepOrder = next.Order
	if err := e.enrollmentRepo.Update(ctx, workspaceID, current); err != nil {
		e.logger.WithField("enrollment_id", enrollment.ID).Error("Failed to advance enrollment step order: " + err.Error())
		return nil
	}

	successor := &domain.Execution{
		ID:           uuid.New().String(),
		EnrollmentID: enrollment.ID,
		StepID:       next.ID,
		StepOrder:    next.Order,
		Status:       domain.ExecutionStatusPending,
		ScheduledAt:  e.now(),
		CreatedAt:    e.now(),
	}
	if err := e.executionRepo.Create(ctx, workspaceID, successor); err != nil {
		e.logger.WithField("enrollment_id", enrollment.ID).Error("Failed to create successor execution: " + err.Error())
		return nil
	}

	// wait steps always go through the scheduler; everything else is
	// dispatched in-pass when the rate limiter and the claim agree
	if next.Type == domain.StepTypeWait || !allowClaim {
		return nil
	}
	if e.limiter != nil && !e.limiter.Allow(RateLimitNamespace, workspaceID) {
		return nil
	}

	claimed, err := e.executionRepo.Claim(ctx, workspaceID, successor.ID)
	if err != nil || !claimed {
		// another worker owns it or the claim failed; the row is durable
		// either way
		return nil
	}

	successor.Status = domain.ExecutionStatusProcessing
	return successor
}

func (e *StepExecutor) completeEnrollment(ctx context.Context, workspaceID, enrollmentID, reason string) {
	if err := e.enrollments.Complete(ctx, workspaceID, enrollmentID, reason); err != nil {
		e.logger.WithField("enrollment_id", enrollmentID).Error("Failed to complete enrollment: " + err.Error())
	}
}

// cancelIneligible stops an enrollment whose contact unsubscribed or was
// deleted mid-flight
func (e *StepExecutor) cancelIneligible(ctx context.Context, workspaceID string, enrollment *domain.Enrollment, execution *domain.Execution) {
	e.cancelExecution(ctx, workspaceID, execution)
	if err := e.enrollments.Cancel(ctx, workspaceID, enrollment.ID, "contact_ineligible"); err != nil {
		e.logger.WithField("enrollment_id", enrollment.ID).Warn("Failed to cancel enrollment for ineligible contact: " + err.Error())
	}
}

func (e *StepExecutor) cancelExecution(ctx context.Context, workspaceID string, execution *domain.Execution) {
	now := e.now()
	execution.Status = domain.ExecutionStatusCancelled
	execution.CompletedAt = &now
	if err := e.executionRepo.Update(ctx, workspaceID, execution); err != nil {
		e.logger.WithField("execution_id", execution.ID).Error("Failed to cancel execution: " + err.Error())
	}
}

// deferExecution releases a claimed execution back to its prior status a short while
// out, without touching the attempt counter. Used for paused automations and
// enrollments, and by the scheduler for rate-limited workspaces.
func (e *StepExecutor) deferExecution(ctx context.Context, workspaceID string, execution *domain.Execution, prevStatus domain.ExecutionStatus) {
	execution.Status = prevStatus
	execution.ScheduledAt = e.now().Add(e.pausedDeferral)
	execution.StartedAt = nil
	if err := e.executionRepo.Update(ctx, workspaceID, execution); err != nil {
		e.logger.WithField("execution_id", execution.ID).Error("Failed to defer execution: " + err.Error())
	}
}

// release puts a claimed execution back untouched after an infrastructure
// error, due again immediately
func (e *StepExecutor) release(ctx context.Context, workspaceID string, execution *domain.Execution, prevStatus domain.ExecutionStatus) {
	execution.Status = prevStatus
	execution.StartedAt = nil
	if err := e.executionRepo.Update(ctx, workspaceID, execution); err != nil {
		e.logger.WithField("execution_id", execution.ID).Error("Failed to release execution: " + err.Error())
	}
}

// Defer exposes the deferral used by the scheduler for rate-limited
// workspaces
func (e *StepExecutor) Defer(ctx context.Context, workspaceID string, execution *domain.Execution, prevStatus domain.ExecutionStatus) {
	e.deferExecution(ctx, workspaceID, execution, prevStatus)
}
