package service

import (
	"context"
	"testing"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/dripkit/dripkit/internal/domain/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAutomationService(ctrl *gomock.Controller) (*AutomationService, *mocks.MockAutomationRepository) {
	repo := mocks.NewMockAutomationRepository(ctrl)
	return NewAutomationService(repo, setupMockLogger(ctrl)), repo
}

func TestAutomationService_Create(t *testing.T) {
	t.Run("fills IDs and defaults to draft", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo := newAutomationService(ctrl)

		automation := &domain.Automation{
			Name:    "Welcome series",
			Trigger: &domain.TriggerConfig{Type: domain.TriggerTypeManual},
			Steps: []*domain.Step{
				{Order: 1, Type: domain.StepTypeEmail,
					Config: domain.StepConfig{Email: &domain.EmailStepConfig{TemplateID: "tpl-1"}}},
			},
		}

		repo.EXPECT().
			Create(gomock.Any(), "ws-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, a *domain.Automation) error {
				assert.NotEmpty(t, a.ID)
				assert.Equal(t, domain.AutomationStatusDraft, a.Status)
				assert.Equal(t, "ws-1", a.WorkspaceID)
				assert.NotEmpty(t, a.Steps[0].ID)
				assert.Equal(t, a.ID, a.Steps[0].AutomationID)
				return nil
			})

		require.NoError(t, svc.Create(context.Background(), "ws-1", automation))
	})

	t.Run("rejects invalid automation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _ := newAutomationService(ctrl)

		err := svc.Create(context.Background(), "ws-1", &domain.Automation{
			Name: "No trigger",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "trigger configuration is required")
	})
}

func TestAutomationService_Activate(t *testing.T) {
	t.Run("activates a valid draft", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo := newAutomationService(ctrl)
		automation := testAutomation()
		automation.Status = domain.AutomationStatusDraft

		repo.EXPECT().GetByID(gomock.Any(), "ws-1", "auto-1").Return(automation, nil)
		repo.EXPECT().
			Update(gomock.Any(), "ws-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, a *domain.Automation) error {
				assert.Equal(t, domain.AutomationStatusActive, a.Status)
				return nil
			})

		require.NoError(t, svc.Activate(context.Background(), "ws-1", "auto-1"))
	})

	t.Run("activating an active automation is a no-op", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo := newAutomationService(ctrl)
		repo.EXPECT().GetByID(gomock.Any(), "ws-1", "auto-1").Return(testAutomation(), nil)

		require.NoError(t, svc.Activate(context.Background(), "ws-1", "auto-1"))
	})

	t.Run("rejects automation without steps", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo := newAutomationService(ctrl)
		automation := testAutomation()
		automation.Status = domain.AutomationStatusDraft
		automation.Steps = nil

		repo.EXPECT().GetByID(gomock.Any(), "ws-1", "auto-1").Return(automation, nil)

		err := svc.Activate(context.Background(), "ws-1", "auto-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no steps")
	})

	t.Run("rejects gapped step ordering", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo := newAutomationService(ctrl)
		automation := testAutomation()
		automation.Status = domain.AutomationStatusDraft
		automation.Steps[2].Order = 5

		repo.EXPECT().GetByID(gomock.Any(), "ws-1", "auto-1").Return(automation, nil)

		err := svc.Activate(context.Background(), "ws-1", "auto-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gap")
	})

	t.Run("rejects dangling condition branch targets", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo := newAutomationService(ctrl)
		automation := testAutomation()
		automation.Status = domain.AutomationStatusDraft
		automation.Steps = append(automation.Steps, &domain.Step{
			ID: "step-4", AutomationID: "auto-1", Order: 4, Type: domain.StepTypeCondition,
			Config: domain.StepConfig{Condition: &domain.ConditionStepConfig{
				Condition:     &domain.Condition{Kind: domain.ConditionKindTagHas, Tag: "vip"},
				SuccessStepID: strPtr("step-does-not-exist"),
			}},
		})

		repo.EXPECT().GetByID(gomock.Any(), "ws-1", "auto-1").Return(automation, nil)

		err := svc.Activate(context.Background(), "ws-1", "auto-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "success_step_id")
	})
}

func TestAutomationService_Pause(t *testing.T) {
	t.Run("pauses an active automation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo := newAutomationService(ctrl)
		repo.EXPECT().GetByID(gomock.Any(), "ws-1", "auto-1").Return(testAutomation(), nil)
		repo.EXPECT().
			Update(gomock.Any(), "ws-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, a *domain.Automation) error {
				assert.Equal(t, domain.AutomationStatusPaused, a.Status)
				return nil
			})

		require.NoError(t, svc.Pause(context.Background(), "ws-1", "auto-1"))
	})

	t.Run("rejects pausing a draft", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo := newAutomationService(ctrl)
		automation := testAutomation()
		automation.Status = domain.AutomationStatusDraft

		repo.EXPECT().GetByID(gomock.Any(), "ws-1", "auto-1").Return(automation, nil)

		err := svc.Pause(context.Background(), "ws-1", "auto-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only active automations")
	})
}

func TestAutomationService_Update(t *testing.T) {
	t.Run("re-validates active automations with activation rules", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo := newAutomationService(ctrl)
		existing := testAutomation()
		repo.EXPECT().GetByID(gomock.Any(), "ws-1", "auto-1").Return(existing, nil)

		// the edit removes all steps while the automation is active
		edited := testAutomation()
		edited.Steps = nil

		err := svc.Update(context.Background(), "ws-1", edited)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no steps")
	})
}
