package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/dripkit/dripkit/internal/domain/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTriggerDiscovery(ctrl *gomock.Controller) (*TriggerDiscovery, *mocks.MockAutomationRepository, *mocks.MockContactRepository, *mocks.MockEnrollmentService) {
	automationRepo := mocks.NewMockAutomationRepository(ctrl)
	contactRepo := mocks.NewMockContactRepository(ctrl)
	enrollments := mocks.NewMockEnrollmentService(ctrl)
	d := NewTriggerDiscovery(automationRepo, contactRepo, enrollments, NewConditionEvaluator(), setupMockLogger(ctrl), 200)
	return d, automationRepo, contactRepo, enrollments
}

func tagTriggerAutomation() *domain.Automation {
	automation := testAutomation()
	automation.Trigger = &domain.TriggerConfig{Type: domain.TriggerTypeTagAdded, TagName: "newsletter"}
	return automation
}

func TestTriggerDiscovery_EnrollsMatchingContacts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d, automationRepo, contactRepo, enrollments := newTriggerDiscovery(ctrl)
	automation := tagTriggerAutomation()

	automationRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Automation{automation}, nil)
	contactRepo.EXPECT().
		FindMatchingForTrigger(gomock.Any(), "ws-1", automation, 200).
		Return([]*domain.Contact{
			{Email: "jane@example.com", Tags: []string{"newsletter"}},
			{Email: "john@example.com", Tags: []string{"newsletter"}},
		}, nil)

	enrollments.EXPECT().
		Enroll(gomock.Any(), "ws-1", "auto-1", "jane@example.com", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ string, _ string, triggerContext map[string]any) (*domain.Enrollment, error) {
			assert.Equal(t, "tag_added", triggerContext["trigger_type"])
			return &domain.Enrollment{ID: "enr-1"}, nil
		})
	enrollments.EXPECT().
		Enroll(gomock.Any(), "ws-1", "auto-1", "john@example.com", gomock.Any()).
		Return(&domain.Enrollment{ID: "enr-2"}, nil)

	enrolled, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, enrolled)
}

func TestTriggerDiscovery_SkipsNonDiscoveryTriggers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d, automationRepo, _, _ := newTriggerDiscovery(ctrl)

	manual := testAutomation()
	immediate := testAutomation()
	immediate.ID = "auto-2"
	immediate.Trigger = &domain.TriggerConfig{Type: domain.TriggerTypeImmediate}

	automationRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Automation{manual, immediate}, nil)

	enrolled, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, enrolled)
}

func TestTriggerDiscovery_ToleratesEnrollmentRaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d, automationRepo, contactRepo, enrollments := newTriggerDiscovery(ctrl)
	automation := tagTriggerAutomation()

	automationRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Automation{automation}, nil)
	contactRepo.EXPECT().
		FindMatchingForTrigger(gomock.Any(), "ws-1", automation, 200).
		Return([]*domain.Contact{{Email: "jane@example.com"}}, nil)

	// another scheduler instance won the race
	enrollments.EXPECT().
		Enroll(gomock.Any(), "ws-1", "auto-1", "jane@example.com", gomock.Any()).
		Return(nil, &domain.ErrAlreadyEnrolled{AutomationID: "auto-1", ContactEmail: "jane@example.com"})

	enrolled, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, enrolled)
}

func TestTriggerDiscovery_TriggerConditionsFilterContacts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d, automationRepo, contactRepo, enrollments := newTriggerDiscovery(ctrl)
	automation := tagTriggerAutomation()
	automation.Trigger.Conditions = []*domain.Condition{
		{Kind: domain.ConditionKindFieldEquals, Field: "plan", Value: "pro"},
	}

	automationRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Automation{automation}, nil)
	contactRepo.EXPECT().
		FindMatchingForTrigger(gomock.Any(), "ws-1", automation, 200).
		Return([]*domain.Contact{
			{Email: "pro@example.com", Properties: `{"plan":"pro"}`},
			{Email: "free@example.com", Properties: `{"plan":"free"}`},
		}, nil)

	enrollments.EXPECT().
		Enroll(gomock.Any(), "ws-1", "auto-1", "pro@example.com", gomock.Any()).
		Return(&domain.Enrollment{ID: "enr-1"}, nil)

	enrolled, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, enrolled)
}

func TestTriggerDiscovery_OneBrokenAutomationDoesNotStarveOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d, automationRepo, contactRepo, enrollments := newTriggerDiscovery(ctrl)

	broken := tagTriggerAutomation()
	healthy := tagTriggerAutomation()
	healthy.ID = "auto-2"

	automationRepo.EXPECT().ListActive(gomock.Any()).Return([]*domain.Automation{broken, healthy}, nil)
	contactRepo.EXPECT().
		FindMatchingForTrigger(gomock.Any(), "ws-1", broken, 200).
		Return(nil, errors.New("query timeout"))
	contactRepo.EXPECT().
		FindMatchingForTrigger(gomock.Any(), "ws-1", healthy, 200).
		Return([]*domain.Contact{{Email: "jane@example.com"}}, nil)
	enrollments.EXPECT().
		Enroll(gomock.Any(), "ws-1", "auto-2", "jane@example.com", gomock.Any()).
		Return(&domain.Enrollment{ID: "enr-1"}, nil)

	enrolled, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, enrolled)
}
