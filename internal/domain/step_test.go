package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_Validate(t *testing.T) {
	valid := func() *Step {
		return &Step{
			ID: "step-1", AutomationID: "auto-1", Order: 1, Type: StepTypeEmail,
			Config: StepConfig{Email: &EmailStepConfig{TemplateID: "tpl-1"}},
		}
	}

	t.Run("valid step", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("order must be positive", func(t *testing.T) {
		s := valid()
		s.Order = 0
		err := s.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "order must be positive")
	})

	t.Run("unknown type", func(t *testing.T) {
		s := valid()
		s.Type = "carrier_pigeon"
		err := s.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid step type")
	})

	t.Run("each type requires its config member", func(t *testing.T) {
		cases := []struct {
			stepType StepType
			want     string
		}{
			{StepTypeEmail, "email config is required"},
			{StepTypeWait, "wait config is required"},
			{StepTypeCondition, "condition config is required"},
			{StepTypeTagAdd, "tag_add config is required"},
			{StepTypeTagRemove, "tag_remove config is required"},
			{StepTypeUpdateField, "update_field config is required"},
			{StepTypeWebhook, "webhook config is required"},
		}
		for _, tc := range cases {
			s := &Step{ID: "step-1", AutomationID: "auto-1", Order: 1, Type: tc.stepType}
			err := s.Validate()
			require.Error(t, err, string(tc.stepType))
			assert.Contains(t, err.Error(), tc.want)
		}
	})
}

func TestWaitStepConfig(t *testing.T) {
	t.Run("AsDuration", func(t *testing.T) {
		cases := []struct {
			duration int
			unit     string
			want     time.Duration
		}{
			{30, "minutes", 30 * time.Minute},
			{4, "hours", 4 * time.Hour},
			{3, "days", 72 * time.Hour},
		}
		for _, tc := range cases {
			cfg := &WaitStepConfig{Duration: tc.duration, Unit: tc.unit}
			got, err := cfg.AsDuration()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		}
	})

	t.Run("invalid unit", func(t *testing.T) {
		cfg := &WaitStepConfig{Duration: 1, Unit: "fortnights"}
		assert.Error(t, cfg.Validate())
		_, err := cfg.AsDuration()
		assert.Error(t, err)
	})

	t.Run("duration must be positive", func(t *testing.T) {
		cfg := &WaitStepConfig{Duration: 0, Unit: "days"}
		assert.Error(t, cfg.Validate())
	})
}

func TestTagStepConfig_Validate(t *testing.T) {
	assert.NoError(t, (&TagStepConfig{Tags: []string{"vip"}}).Validate())
	assert.Error(t, (&TagStepConfig{}).Validate())
	assert.Error(t, (&TagStepConfig{Tags: []string{"vip", "  "}}).Validate())
}

func TestWebhookStepConfig_Validate(t *testing.T) {
	t.Run("url required and must be http", func(t *testing.T) {
		assert.Error(t, (&WebhookStepConfig{}).Validate())
		assert.Error(t, (&WebhookStepConfig{URL: "ftp://example.com"}).Validate())
		assert.NoError(t, (&WebhookStepConfig{URL: "https://example.com/hook"}).Validate())
	})

	t.Run("method whitelist", func(t *testing.T) {
		assert.NoError(t, (&WebhookStepConfig{URL: "https://example.com", Method: "PUT"}).Validate())
		assert.NoError(t, (&WebhookStepConfig{URL: "https://example.com", Method: "patch"}).Validate())
		assert.Error(t, (&WebhookStepConfig{URL: "https://example.com", Method: "DELETE"}).Validate())
	})
}

func TestUpdateFieldStepConfig_Validate(t *testing.T) {
	assert.NoError(t, (&UpdateFieldStepConfig{Field: "first_name", Value: "Jane"}).Validate())
	assert.Error(t, (&UpdateFieldStepConfig{Value: "Jane"}).Validate())
}
