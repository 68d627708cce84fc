package domain

import (
	"fmt"
	"strings"
	"time"
)

// StepType represents the kind of work a step performs
type StepType string

const (
	StepTypeEmail       StepType = "email"
	StepTypeWait        StepType = "wait"
	StepTypeCondition   StepType = "condition"
	StepTypeTagAdd      StepType = "tag_add"
	StepTypeTagRemove   StepType = "tag_remove"
	StepTypeUpdateField StepType = "update_field"
	StepTypeWebhook     StepType = "webhook"
)

// IsValid checks if the step type is valid
func (t StepType) IsValid() bool {
	switch t {
	case StepTypeEmail, StepTypeWait, StepTypeCondition, StepTypeTagAdd,
		StepTypeTagRemove, StepTypeUpdateField, StepTypeWebhook:
		return true
	default:
		return false
	}
}

// Step is one unit of work inside an automation
type Step struct {
	ID           string     `json:"id"`
	AutomationID string     `json:"automation_id"`
	Order        int        `json:"order"`
	Type         StepType   `json:"type"`
	Config       StepConfig `json:"config"`
	CreatedAt    time.Time  `json:"created_at"`
}

// StepConfig is a tagged union over step kinds. Exactly one member matching
// Step.Type must be set; the discriminant lives on the step itself so
// executor dispatch never has to guess at untyped key/value bags.
type StepConfig struct {
	Email       *EmailStepConfig       `json:"email,omitempty"`
	Wait        *WaitStepConfig        `json:"wait,omitempty"`
	Condition   *ConditionStepConfig   `json:"condition,omitempty"`
	TagAdd      *TagStepConfig         `json:"tag_add,omitempty"`
	TagRemove   *TagStepConfig         `json:"tag_remove,omitempty"`
	UpdateField *UpdateFieldStepConfig `json:"update_field,omitempty"`
	Webhook     *WebhookStepConfig     `json:"webhook,omitempty"`
}

// Validate validates the step, including that its config member matches its type
func (s *Step) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("id is required")
	}
	if len(s.ID) > 36 {
		return fmt.Errorf("id cannot exceed 36 characters")
	}

	if s.AutomationID == "" {
		return fmt.Errorf("automation_id is required")
	}

	if s.Order <= 0 {
		return fmt.Errorf("order must be positive")
	}

	if !s.Type.IsValid() {
		return fmt.Errorf("invalid step type: %s", s.Type)
	}

	switch s.Type {
	case StepTypeEmail:
		if s.Config.Email == nil {
			return fmt.Errorf("email config is required for email steps")
		}
		return s.Config.Email.Validate()
	case StepTypeWait:
		if s.Config.Wait == nil {
			return fmt.Errorf("wait config is required for wait steps")
		}
		return s.Config.Wait.Validate()
	case StepTypeCondition:
		if s.Config.Condition == nil {
			return fmt.Errorf("condition config is required for condition steps")
		}
		return s.Config.Condition.Validate()
	case StepTypeTagAdd:
		if s.Config.TagAdd == nil {
			return fmt.Errorf("tag_add config is required for tag_add steps")
		}
		return s.Config.TagAdd.Validate()
	case StepTypeTagRemove:
		if s.Config.TagRemove == nil {
			return fmt.Errorf("tag_remove config is required for tag_remove steps")
		}
		return s.Config.TagRemove.Validate()
	case StepTypeUpdateField:
		if s.Config.UpdateField == nil {
			return fmt.Errorf("update_field config is required for update_field steps")
		}
		return s.Config.UpdateField.Validate()
	case StepTypeWebhook:
		if s.Config.Webhook == nil {
			return fmt.Errorf("webhook config is required for webhook steps")
		}
		return s.Config.Webhook.Validate()
	}

	return nil
}

// EmailStepConfig configures an email step
type EmailStepConfig struct {
	TemplateID      string  `json:"template_id"`
	FromOverride    *string `json:"from_override,omitempty"`
	SubjectOverride *string `json:"subject_override,omitempty"`
}

// Validate validates the email step config
func (c *EmailStepConfig) Validate() error {
	if c.TemplateID == "" {
		return fmt.Errorf("template_id is required")
	}
	return nil
}

// WaitStepConfig configures a wait step as a value plus unit pair
type WaitStepConfig struct {
	Duration int    `json:"duration"`
	Unit     string `json:"unit"` // "minutes", "hours", "days"
}

// Validate validates the wait step config
func (c *WaitStepConfig) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}

	switch c.Unit {
	case "minutes", "hours", "days":
		return nil
	default:
		return fmt.Errorf("invalid unit: %s (must be minutes, hours, or days)", c.Unit)
	}
}

// AsDuration converts the value+unit pair into a time.Duration
func (c *WaitStepConfig) AsDuration() (time.Duration, error) {
	switch c.Unit {
	case "minutes":
		return time.Duration(c.Duration) * time.Minute, nil
	case "hours":
		return time.Duration(c.Duration) * time.Hour, nil
	case "days":
		return time.Duration(c.Duration) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid unit: %s", c.Unit)
	}
}

// ConditionStepConfig configures a condition step. A nil branch target
// terminates that branch of the enrollment instead of advancing.
type ConditionStepConfig struct {
	Condition     *Condition `json:"condition"`
	SuccessStepID *string    `json:"success_step_id,omitempty"`
	FailureStepID *string    `json:"failure_step_id,omitempty"`
}

// Validate validates the condition step config
func (c *ConditionStepConfig) Validate() error {
	if c.Condition == nil {
		return fmt.Errorf("condition is required")
	}
	return c.Condition.Validate()
}

// TagStepConfig configures tag_add and tag_remove steps
type TagStepConfig struct {
	Tags []string `json:"tags"`
}

// Validate validates the tag step config
func (c *TagStepConfig) Validate() error {
	if len(c.Tags) == 0 {
		return fmt.Errorf("at least one tag is required")
	}
	for _, tag := range c.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tags cannot be blank")
		}
	}
	return nil
}

// UpdateFieldStepConfig configures an update_field step
type UpdateFieldStepConfig struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Validate validates the update_field step config. Unknown field names are
// rejected here as well as at execution time, so a bad config never enters
// the retry path.
func (c *UpdateFieldStepConfig) Validate() error {
	if c.Field == "" {
		return fmt.Errorf("field is required")
	}
	return nil
}

// WebhookStepConfig configures a webhook step
type WebhookStepConfig struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"` // defaults to POST
	Headers map[string]string `json:"headers,omitempty"`
	Payload map[string]any    `json:"payload,omitempty"` // custom fields merged into the body
}

// Validate validates the webhook step config
func (c *WebhookStepConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("url must start with http:// or https://")
	}
	if c.Method != "" {
		switch strings.ToUpper(c.Method) {
		case "POST", "PUT", "PATCH":
		default:
			return fmt.Errorf("invalid method: %s", c.Method)
		}
	}
	return nil
}
