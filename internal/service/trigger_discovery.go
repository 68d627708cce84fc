package service

import (
	"context"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/dripkit/dripkit/pkg/logger"
)

// TriggerDiscovery scans contacts for automations whose trigger type requires
// discovery (tag_added, date_based, behavior_based) and enrolls new matches.
// Immediate and manual triggers only ever enroll through explicit calls.
type TriggerDiscovery struct {
	automationRepo domain.AutomationRepository
	contactRepo    domain.ContactRepository
	enrollments    domain.EnrollmentService
	evaluator      *ConditionEvaluator
	logger         logger.Logger
	batchSize      int
}

// NewTriggerDiscovery creates a new TriggerDiscovery
func NewTriggerDiscovery(
	automationRepo domain.AutomationRepository,
	contactRepo domain.ContactRepository,
	enrollments domain.EnrollmentService,
	evaluator *ConditionEvaluator,
	logger logger.Logger,
	batchSize int,
) *TriggerDiscovery {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &TriggerDiscovery{
		automationRepo: automationRepo,
		contactRepo:    contactRepo,
		enrollments:    enrollments,
		evaluator:      evaluator,
		logger:         logger,
		batchSize:      batchSize,
	}
}

// Run performs one discovery pass over all active automations and returns the
// number of new enrollments
func (d *TriggerDiscovery) Run(ctx context.Context) (int, error) {
	automations, err := d.automationRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	enrolled := 0
	for _, automation := range automations {
		if !automation.Trigger.Type.RequiresDiscovery() {
			continue
		}
		n, err := d.discoverOne(ctx, automation)
		if err != nil {
			// one broken automation must not starve the others
			d.logger.WithFields(map[string]interface{}{
				"automation_id": automation.ID,
				"error":         err.Error(),
			}).Error("Trigger discovery failed for automation")
			continue
		}
		enrolled += n
	}

	return enrolled, nil
}

func (d *TriggerDiscovery) discoverOne(ctx context.Context, automation *domain.Automation) (int, error) {
	contacts, err := d.contactRepo.FindMatchingForTrigger(ctx, automation.WorkspaceID, automation, d.batchSize)
	if err != nil {
		return 0, err
	}

	enrolled := 0
	for _, contact := range contacts {
		if len(automation.Trigger.Conditions) > 0 {
			met, err := d.evaluator.EvaluateAll(automation.Trigger.Conditions, contact)
			if err != nil || !met {
				continue
			}
		}

		_, err := d.enrollments.Enroll(ctx, automation.WorkspaceID, automation.ID, contact.Email, map[string]any{
			"trigger_type": string(automation.Trigger.Type),
		})
		if err != nil {
			// lost the race against another scheduler instance, fine
			if domain.IsAlreadyEnrolled(err) {
				continue
			}
			d.logger.WithFields(map[string]interface{}{
				"automation_id": automation.ID,
				"contact_email": contact.Email,
				"error":         err.Error(),
			}).Warn("Failed to enroll discovered contact")
			continue
		}
		enrolled++
	}

	return enrolled, nil
}
