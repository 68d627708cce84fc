package domain

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_automation_repository.go -package mocks github.com/dripkit/dripkit/internal/domain AutomationRepository

// AutomationStatus represents the status of an automation
type AutomationStatus string

const (
	AutomationStatusDraft  AutomationStatus = "draft"
	AutomationStatusActive AutomationStatus = "active"
	AutomationStatusPaused AutomationStatus = "paused"
)

// IsValid checks if the automation status is valid
func (s AutomationStatus) IsValid() bool {
	switch s {
	case AutomationStatusDraft, AutomationStatusActive, AutomationStatusPaused:
		return true
	default:
		return false
	}
}

// TriggerType defines how contacts get enrolled into an automation
type TriggerType string

const (
	TriggerTypeImmediate     TriggerType = "immediate"
	TriggerTypeTagAdded      TriggerType = "tag_added"
	TriggerTypeDateBased     TriggerType = "date_based"
	TriggerTypeBehaviorBased TriggerType = "behavior_based"
	TriggerTypeManual        TriggerType = "manual"
)

// IsValid checks if the trigger type is valid
func (t TriggerType) IsValid() bool {
	switch t {
	case TriggerTypeImmediate, TriggerTypeTagAdded, TriggerTypeDateBased,
		TriggerTypeBehaviorBased, TriggerTypeManual:
		return true
	default:
		return false
	}
}

// RequiresDiscovery reports whether the scheduler has to scan for matching
// contacts, as opposed to enrollments arriving through an explicit call.
func (t TriggerType) RequiresDiscovery() bool {
	switch t {
	case TriggerTypeTagAdded, TriggerTypeDateBased, TriggerTypeBehaviorBased:
		return true
	default:
		return false
	}
}

// TriggerConfig defines the enrollment trigger for an automation
type TriggerConfig struct {
	Type TriggerType `json:"type"`

	// TagName is required for tag_added triggers
	TagName string `json:"tag_name,omitempty"`

	// DateField names the contact date property for date_based triggers
	DateField string `json:"date_field,omitempty"`

	// EventKind is required for behavior_based triggers, e.g. "purchase".
	// The trigger matches contacts whose last occurrence of the event falls
	// inside LookbackDays.
	EventKind    string `json:"event_kind,omitempty"`
	LookbackDays int    `json:"lookback_days,omitempty"`

	// Conditions are additional predicates a contact must satisfy before
	// being enrolled. All of them must match.
	Conditions []*Condition `json:"conditions,omitempty"`
}

// Validate validates the trigger configuration
func (c *TriggerConfig) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid trigger type: %s", c.Type)
	}

	switch c.Type {
	case TriggerTypeTagAdded:
		if c.TagName == "" {
			return fmt.Errorf("tag_name is required for tag_added triggers")
		}
	case TriggerTypeDateBased:
		if c.DateField == "" {
			return fmt.Errorf("date_field is required for date_based triggers")
		}
	case TriggerTypeBehaviorBased:
		if c.EventKind == "" {
			return fmt.Errorf("event_kind is required for behavior_based triggers")
		}
		if c.LookbackDays <= 0 {
			return fmt.Errorf("lookback_days must be positive for behavior_based triggers")
		}
	}

	for i, cond := range c.Conditions {
		if cond == nil {
			return fmt.Errorf("trigger condition at index %d is nil", i)
		}
		if err := cond.Validate(); err != nil {
			return fmt.Errorf("invalid trigger condition %d: %w", i, err)
		}
	}

	return nil
}

// AutomationStats holds counters for an automation
type AutomationStats struct {
	Enrolled  int64 `json:"enrolled"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	Failed    int64 `json:"failed"`
}

// Automation represents a reusable workflow template composed of ordered steps
type Automation struct {
	ID          string           `json:"id"`
	WorkspaceID string           `json:"workspace_id"`
	Name        string           `json:"name"`
	Status      AutomationStatus `json:"status"`
	Trigger     *TriggerConfig   `json:"trigger"`
	Steps       []*Step          `json:"steps"`
	Stats       *AutomationStats `json:"stats,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   *time.Time       `json:"deleted_at,omitempty"`
}

// GetStepByID finds a step by ID
func (a *Automation) GetStepByID(stepID string) *Step {
	for _, s := range a.Steps {
		if s.ID == stepID {
			return s
		}
	}
	return nil
}

// FirstStep returns the step with the lowest order, or nil
func (a *Automation) FirstStep() *Step {
	var first *Step
	for _, s := range a.Steps {
		if first == nil || s.Order < first.Order {
			first = s
		}
	}
	return first
}

// NextStepAfter returns the step with the smallest order strictly greater
// than the given order, or nil when the given step is the last one.
func (a *Automation) NextStepAfter(order int) *Step {
	var next *Step
	for _, s := range a.Steps {
		if s.Order <= order {
			continue
		}
		if next == nil || s.Order < next.Order {
			next = s
		}
	}
	return next
}

// Validate validates the automation in any status
func (a *Automation) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("id is required")
	}
	if len(a.ID) > 36 {
		return fmt.Errorf("id cannot exceed 36 characters")
	}

	if a.WorkspaceID == "" {
		return fmt.Errorf("workspace_id is required")
	}

	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(a.Name) > 255 {
		return fmt.Errorf("name cannot exceed 255 characters")
	}

	if !a.Status.IsValid() {
		return fmt.Errorf("invalid automation status: %s", a.Status)
	}

	if a.Trigger == nil {
		return fmt.Errorf("trigger configuration is required")
	}
	if err := a.Trigger.Validate(); err != nil {
		return err
	}

	for i, step := range a.Steps {
		if step == nil {
			return fmt.Errorf("step at index %d is nil", i)
		}
		if err := step.Validate(); err != nil {
			return fmt.Errorf("invalid step %s: %w", step.ID, err)
		}
	}

	return nil
}

// ValidateForActivation performs the stricter checks required before an
// automation may go active: at least one step, step orders strictly
// increasing and gapless starting from 1, and condition branch targets
// resolving to real steps.
func (a *Automation) ValidateForActivation() error {
	if err := a.Validate(); err != nil {
		return err
	}

	if len(a.Steps) == 0 {
		return fmt.Errorf("automation has no steps and cannot be activated")
	}

	byOrder := make(map[int]*Step, len(a.Steps))
	for _, s := range a.Steps {
		if _, dup := byOrder[s.Order]; dup {
			return fmt.Errorf("duplicate step order %d", s.Order)
		}
		byOrder[s.Order] = s
	}
	for i := 1; i <= len(a.Steps); i++ {
		if _, ok := byOrder[i]; !ok {
			return fmt.Errorf("step ordering has a gap at %d", i)
		}
	}

	for _, s := range a.Steps {
		if s.Type != StepTypeCondition {
			continue
		}
		cfg := s.Config.Condition
		if cfg.SuccessStepID != nil && a.GetStepByID(*cfg.SuccessStepID) == nil {
			return fmt.Errorf("step %s: success_step_id %s does not reference a valid step", s.ID, *cfg.SuccessStepID)
		}
		if cfg.FailureStepID != nil && a.GetStepByID(*cfg.FailureStepID) == nil {
			return fmt.Errorf("step %s: failure_step_id %s does not reference a valid step", s.ID, *cfg.FailureStepID)
		}
	}

	return nil
}

// AutomationFilter defines filtering options for listing automations
type AutomationFilter struct {
	Status         []AutomationStatus
	TriggerType    TriggerType
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// AutomationRepository defines the interface for automation persistence
type AutomationRepository interface {
	Create(ctx context.Context, workspaceID string, automation *Automation) error
	GetByID(ctx context.Context, workspaceID, id string) (*Automation, error)
	List(ctx context.Context, workspaceID string, filter AutomationFilter) ([]*Automation, int, error)
	Update(ctx context.Context, workspaceID string, automation *Automation) error
	Delete(ctx context.Context, workspaceID, id string) error

	// ListActive returns active automations across all workspaces, used by
	// the scheduler for trigger discovery.
	ListActive(ctx context.Context) ([]*Automation, error)

	// IncrementStat bumps one of the stats counters (enrolled, completed,
	// cancelled, failed) on the automation row.
	IncrementStat(ctx context.Context, workspaceID, automationID, statName string) error

	WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error
}

//go:generate mockgen -destination mocks/mock_automation_service.go -package mocks github.com/dripkit/dripkit/internal/domain AutomationService

// AutomationService defines the interface for automation business logic
type AutomationService interface {
	Create(ctx context.Context, workspaceID string, automation *Automation) error
	Get(ctx context.Context, workspaceID, automationID string) (*Automation, error)
	List(ctx context.Context, workspaceID string, filter AutomationFilter) ([]*Automation, int, error)
	Update(ctx context.Context, workspaceID string, automation *Automation) error
	Delete(ctx context.Context, workspaceID, automationID string) error

	Activate(ctx context.Context, workspaceID, automationID string) error
	Pause(ctx context.Context, workspaceID, automationID string) error
}
