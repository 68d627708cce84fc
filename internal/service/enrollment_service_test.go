package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/dripkit/dripkit/internal/domain/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enrollmentServiceMocks struct {
	automationRepo *mocks.MockAutomationRepository
	enrollmentRepo *mocks.MockEnrollmentRepository
	executionRepo  *mocks.MockExecutionRepository
	contactRepo    *mocks.MockContactRepository
	audit          *mocks.MockAuditSink
}

func newEnrollmentService(ctrl *gomock.Controller) (*EnrollmentService, *enrollmentServiceMocks) {
	m := &enrollmentServiceMocks{
		automationRepo: mocks.NewMockAutomationRepository(ctrl),
		enrollmentRepo: mocks.NewMockEnrollmentRepository(ctrl),
		executionRepo:  mocks.NewMockExecutionRepository(ctrl),
		contactRepo:    mocks.NewMockContactRepository(ctrl),
		audit:          mocks.NewMockAuditSink(ctrl),
	}
	svc := NewEnrollmentService(
		m.automationRepo, m.enrollmentRepo, m.executionRepo, m.contactRepo,
		m.audit, setupMockLogger(ctrl))
	return svc, m
}

func TestEnrollmentService_Enroll(t *testing.T) {
	t.Run("creates enrollment and first execution in one transaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newEnrollmentService(ctrl)
		automation := testAutomation()

		m.automationRepo.EXPECT().GetByID(gomock.Any(), "ws-1", "auto-1").Return(automation, nil)
		m.contactRepo.EXPECT().GetByEmail(gomock.Any(), "ws-1", "jane@example.com").Return(testContact(), nil)

		m.automationRepo.EXPECT().
			WithTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, fn func(*sql.Tx) error) error {
				return fn(nil)
			})
		m.enrollmentRepo.EXPECT().
			CreateTx(gomock.Any(), gomock.Any(), "ws-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sql.Tx, _ string, e *domain.Enrollment) error {
				assert.Equal(t, domain.EnrollmentStatusActive, e.Status)
				assert.Equal(t, 1, e.CurrentStepOrder)
				assert.Equal(t, "welcome_signup", e.Context["trigger"])
				return nil
			})
		m.executionRepo.EXPECT().
			CreateTx(gomock.Any(), gomock.Any(), "ws-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sql.Tx, _ string, exec *domain.Execution) error {
				assert.Equal(t, "step-1", exec.StepID)
				assert.Equal(t, domain.ExecutionStatusPending, exec.Status)
				assert.WithinDuration(t, time.Now().UTC(), exec.ScheduledAt, 5*time.Second)
				return nil
			})
		m.automationRepo.EXPECT().IncrementStat(gomock.Any(), "ws-1", "auto-1", "enrolled").Return(nil)
		m.audit.EXPECT().Record(gomock.Any(), "ws-1", "enrollment_started", gomock.Any()).Return(nil)

		enrollment, err := svc.Enroll(context.Background(), "ws-1", "auto-1", "jane@example.com",
			map[string]any{"trigger": "welcome_signup"})
		require.NoError(t, err)
		require.NotNil(t, enrollment)
		assert.NotEmpty(t, enrollment.ID)
		assert.Equal(t, "jane@example.com", enrollment.ContactEmail)
	})

	t.Run("passes through already enrolled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newEnrollmentService(ctrl)

		m.automationRepo.EXPECT().GetByID(gomock.Any(), "ws-1", "auto-1").Return(testAutomation(), nil)
		m.contactRepo.EXPECT().GetByEmail(gomock.Any(), "ws-1", "jane@example.com").Return(testContact(), nil)
		m.automationRepo.EXPECT().
			WithTransaction(gomock.Any(), gomock.Any()).
			Return(&domain.ErrAlreadyEnrolled{AutomationID: "auto-1", ContactEmail: "jane@example.com"})

		_, err := svc.Enroll(context.Background(), "ws-1", "auto-1", "jane@example.com", nil)
		require.Error(t, err)
		assert.True(t, domain.IsAlreadyEnrolled(err))
	})

	t.Run("rejects inactive automation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newEnrollmentService(ctrl)
		automation := testAutomation()
		automation.Status = domain.AutomationStatusDraft

		m.automationRepo.EXPECT().GetByID(gomock.Any(), "ws-1", "auto-1").Return(automation, nil)

		_, err := svc.Enroll(context.Background(), "ws-1", "auto-1", "jane@example.com", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not active")
	})

	t.Run("rejects ineligible contact", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newEnrollmentService(ctrl)
		contact := testContact()
		contact.Unsubscribed = true

		m.automationRepo.EXPECT().GetByID(gomock.Any(), "ws-1", "auto-1").Return(testAutomation(), nil)
		m.contactRepo.EXPECT().GetByEmail(gomock.Any(), "ws-1", "jane@example.com").Return(contact, nil)

		_, err := svc.Enroll(context.Background(), "ws-1", "auto-1", "jane@example.com", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not eligible")
	})
}

func TestEnrollmentService_Cancel(t *testing.T) {
	t.Run("cancels enrollment and its pending executions", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newEnrollmentService(ctrl)

		m.enrollmentRepo.EXPECT().GetByID(gomock.Any(), "ws-1", "enr-1").Return(testEnrollment(2), nil)
		m.enrollmentRepo.EXPECT().
			Update(gomock.Any(), "ws-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, e *domain.Enrollment) error {
				assert.Equal(t, domain.EnrollmentStatusCancelled, e.Status)
				require.NotNil(t, e.CancelledAt)
				require.NotNil(t, e.ExitReason)
				assert.Equal(t, "user_request", *e.ExitReason)
				return nil
			})
		m.executionRepo.EXPECT().CancelPendingForEnrollment(gomock.Any(), "ws-1", "enr-1").Return(int64(1), nil)
		m.automationRepo.EXPECT().IncrementStat(gomock.Any(), "ws-1", "auto-1", "cancelled").Return(nil)
		m.audit.EXPECT().Record(gomock.Any(), "ws-1", "enrollment_cancelled", gomock.Any()).Return(nil)

		err := svc.Cancel(context.Background(), "ws-1", "enr-1", "user_request")
		require.NoError(t, err)
	})

	t.Run("rejects terminal enrollment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newEnrollmentService(ctrl)
		enrollment := testEnrollment(2)
		enrollment.Status = domain.EnrollmentStatusCompleted

		m.enrollmentRepo.EXPECT().GetByID(gomock.Any(), "ws-1", "enr-1").Return(enrollment, nil)

		err := svc.Cancel(context.Background(), "ws-1", "enr-1", "user_request")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already completed")
	})
}

func TestEnrollmentService_PauseResume(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newEnrollmentService(ctrl)

	m.enrollmentRepo.EXPECT().GetByID(gomock.Any(), "ws-1", "enr-1").Return(testEnrollment(1), nil)
	m.enrollmentRepo.EXPECT().
		Update(gomock.Any(), "ws-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, e *domain.Enrollment) error {
			assert.Equal(t, domain.EnrollmentStatusPaused, e.Status)
			return nil
		})
	require.NoError(t, svc.Pause(context.Background(), "ws-1", "enr-1"))

	paused := testEnrollment(1)
	paused.Status = domain.EnrollmentStatusPaused
	m.enrollmentRepo.EXPECT().GetByID(gomock.Any(), "ws-1", "enr-1").Return(paused, nil)
	m.enrollmentRepo.EXPECT().
		Update(gomock.Any(), "ws-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, e *domain.Enrollment) error {
			assert.Equal(t, domain.EnrollmentStatusActive, e.Status)
			return nil
		})
	require.NoError(t, svc.Resume(context.Background(), "ws-1", "enr-1"))

	// pausing a non-active enrollment is an error
	cancelled := testEnrollment(1)
	cancelled.Status = domain.EnrollmentStatusCancelled
	m.enrollmentRepo.EXPECT().GetByID(gomock.Any(), "ws-1", "enr-1").Return(cancelled, nil)
	assert.Error(t, svc.Pause(context.Background(), "ws-1", "enr-1"))
}

func TestEnrollmentService_Complete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newEnrollmentService(ctrl)

	m.enrollmentRepo.EXPECT().GetByID(gomock.Any(), "ws-1", "enr-1").Return(testEnrollment(3), nil)
	m.enrollmentRepo.EXPECT().
		Update(gomock.Any(), "ws-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, e *domain.Enrollment) error {
			assert.Equal(t, domain.EnrollmentStatusCompleted, e.Status)
			require.NotNil(t, e.CompletedAt)
			require.NotNil(t, e.ExitReason)
			assert.Equal(t, "all_steps_completed", *e.ExitReason)
			return nil
		})
	m.automationRepo.EXPECT().IncrementStat(gomock.Any(), "ws-1", "auto-1", "completed").Return(nil)
	m.audit.EXPECT().Record(gomock.Any(), "ws-1", "enrollment_completed", gomock.Any()).Return(nil)

	err := svc.Complete(context.Background(), "ws-1", "enr-1", "all_steps_completed")
	require.NoError(t, err)
}

func TestEnrollmentService_History(t *testing.T) {
	t.Run("returns executions for an existing enrollment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newEnrollmentService(ctrl)

		executions := []*domain.Execution{
			{ID: "exec-1", EnrollmentID: "enr-1", StepOrder: 1, Status: domain.ExecutionStatusCompleted},
			{ID: "exec-2", EnrollmentID: "enr-1", StepOrder: 2, Status: domain.ExecutionStatusWaiting},
		}
		m.enrollmentRepo.EXPECT().GetByID(gomock.Any(), "ws-1", "enr-1").Return(testEnrollment(2), nil)
		m.executionRepo.EXPECT().ListByEnrollment(gomock.Any(), "ws-1", "enr-1").Return(executions, nil)

		got, err := svc.History(context.Background(), "ws-1", "enr-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "exec-1", got[0].ID)
	})

	t.Run("unknown enrollment surfaces not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newEnrollmentService(ctrl)

		m.enrollmentRepo.EXPECT().
			GetByID(gomock.Any(), "ws-1", "enr-ghost").
			Return(nil, &domain.ErrNotFound{Entity: "enrollment", ID: "enr-ghost"})

		_, err := svc.History(context.Background(), "ws-1", "enr-ghost")
		var notFound *domain.ErrNotFound
		assert.ErrorAs(t, err, &notFound)
	})
}
