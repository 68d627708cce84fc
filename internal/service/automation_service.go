package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/dripkit/dripkit/pkg/logger"
	"github.com/google/uuid"
)

// AutomationService implements domain.AutomationService
type AutomationService struct {
	repo   domain.AutomationRepository
	logger logger.Logger
}

// NewAutomationService creates a new AutomationService
func NewAutomationService(repo domain.AutomationRepository, logger logger.Logger) *AutomationService {
	return &AutomationService{
		repo:   repo,
		logger: logger,
	}
}

// Create creates a new automation in draft status
func (s *AutomationService) Create(ctx context.Context, workspaceID string, automation *domain.Automation) error {
	if automation.ID == "" {
		automation.ID = uuid.New().String()
	}
	if automation.Status == "" {
		automation.Status = domain.AutomationStatusDraft
	}
	automation.WorkspaceID = workspaceID
	if automation.Stats == nil {
		automation.Stats = &domain.AutomationStats{}
	}

	for _, step := range automation.Steps {
		if step.ID == "" {
			step.ID = uuid.New().String()
		}
		step.AutomationID = automation.ID
		if step.CreatedAt.IsZero() {
			step.CreatedAt = time.Now().UTC()
		}
	}

	if err := automation.Validate(); err != nil {
		return fmt.Errorf("invalid automation: %w", err)
	}

	if err := s.repo.Create(ctx, workspaceID, automation); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"workspace_id":  workspaceID,
			"automation_id": automation.ID,
			"error":         err.Error(),
		}).Error("Failed to create automation")
		return err
	}

	return nil
}

// Get retrieves an automation by ID
func (s *AutomationService) Get(ctx context.Context, workspaceID, automationID string) (*domain.Automation, error) {
	return s.repo.GetByID(ctx, workspaceID, automationID)
}

// List retrieves automations with filtering
func (s *AutomationService) List(ctx context.Context, workspaceID string, filter domain.AutomationFilter) ([]*domain.Automation, int, error) {
	return s.repo.List(ctx, workspaceID, filter)
}

// Update updates an automation. Active automations are validated with the
// activation rules so an edit can never leave a broken automation running.
func (s *AutomationService) Update(ctx context.Context, workspaceID string, automation *domain.Automation) error {
	existing, err := s.repo.GetByID(ctx, workspaceID, automation.ID)
	if err != nil {
		return err
	}

	automation.WorkspaceID = workspaceID
	if automation.Status == "" {
		automation.Status = existing.Status
	}
	if automation.Stats == nil {
		automation.Stats = existing.Stats
	}

	for _, step := range automation.Steps {
		if step.ID == "" {
			step.ID = uuid.New().String()
		}
		step.AutomationID = automation.ID
		if step.CreatedAt.IsZero() {
			step.CreatedAt = time.Now().UTC()
		}
	}

	if automation.Status == domain.AutomationStatusActive {
		if err := automation.ValidateForActivation(); err != nil {
			return fmt.Errorf("invalid automation: %w", err)
		}
	} else if err := automation.Validate(); err != nil {
		return fmt.Errorf("invalid automation: %w", err)
	}

	return s.repo.Update(ctx, workspaceID, automation)
}

// Delete soft-deletes an automation and cancels its active enrollments
func (s *AutomationService) Delete(ctx context.Context, workspaceID, automationID string) error {
	if err := s.repo.Delete(ctx, workspaceID, automationID); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"workspace_id":  workspaceID,
		"automation_id": automationID,
	}).Info("Automation deleted")

	return nil
}

// Activate transitions an automation to active after the stricter activation
// checks: at least one step, gapless ordering, branch targets resolving.
func (s *AutomationService) Activate(ctx context.Context, workspaceID, automationID string) error {
	automation, err := s.repo.GetByID(ctx, workspaceID, automationID)
	if err != nil {
		return err
	}

	if automation.Status == domain.AutomationStatusActive {
		return nil
	}

	automation.Status = domain.AutomationStatusActive
	if err := automation.ValidateForActivation(); err != nil {
		return fmt.Errorf("automation cannot be activated: %w", err)
	}

	if err := s.repo.Update(ctx, workspaceID, automation); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"workspace_id":  workspaceID,
		"automation_id": automationID,
	}).Info("Automation activated")

	return nil
}

// Pause transitions an automation to paused. Enrolled contacts freeze in
// place: their due executions are re-deferred by the scheduler until the
// automation resumes.
func (s *AutomationService) Pause(ctx context.Context, workspaceID, automationID string) error {
	automation, err := s.repo.GetByID(ctx, workspaceID, automationID)
	if err != nil {
		return err
	}

	if automation.Status == domain.AutomationStatusPaused {
		return nil
	}
	if automation.Status != domain.AutomationStatusActive {
		return fmt.Errorf("only active automations can be paused, current status: %s", automation.Status)
	}

	automation.Status = domain.AutomationStatusPaused
	if err := s.repo.Update(ctx, workspaceID, automation); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"workspace_id":  workspaceID,
		"automation_id": automationID,
	}).Info("Automation paused")

	return nil
}
