package service

import (
	"testing"
	"time"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func evaluatorAt(now time.Time) *ConditionEvaluator {
	return &ConditionEvaluator{now: func() time.Time { return now }}
}

func TestConditionEvaluator_TagHas(t *testing.T) {
	e := NewConditionEvaluator()
	contact := &domain.Contact{Email: "jane@example.com", Tags: []string{"customer", "vip"}}

	met, err := e.Evaluate(&domain.Condition{Kind: domain.ConditionKindTagHas, Tag: "vip"}, contact)
	require.NoError(t, err)
	assert.True(t, met)

	met, err = e.Evaluate(&domain.Condition{Kind: domain.ConditionKindTagHas, Tag: "churned"}, contact)
	require.NoError(t, err)
	assert.False(t, met)
}

func TestConditionEvaluator_FieldEquals(t *testing.T) {
	e := NewConditionEvaluator()
	country := "DE"
	contact := &domain.Contact{
		Email:      "jane@example.com",
		Country:    &country,
		Properties: `{"plan":"pro","seats":12}`,
	}

	t.Run("standard field", func(t *testing.T) {
		met, err := e.Evaluate(&domain.Condition{
			Kind: domain.ConditionKindFieldEquals, Field: "country", Value: "DE"}, contact)
		require.NoError(t, err)
		assert.True(t, met)
	})

	t.Run("custom property", func(t *testing.T) {
		met, err := e.Evaluate(&domain.Condition{
			Kind: domain.ConditionKindFieldEquals, Field: "plan", Value: "pro"}, contact)
		require.NoError(t, err)
		assert.True(t, met)
	})

	t.Run("missing field evaluates false", func(t *testing.T) {
		met, err := e.Evaluate(&domain.Condition{
			Kind: domain.ConditionKindFieldEquals, Field: "nickname", Value: "jj"}, contact)
		require.NoError(t, err)
		assert.False(t, met)
	})
}

func TestConditionEvaluator_FieldCompare(t *testing.T) {
	e := NewConditionEvaluator()
	contact := &domain.Contact{
		Email:      "jane@example.com",
		Properties: `{"seats":12,"plan":"pro"}`,
	}

	cases := []struct {
		name     string
		operator domain.CompareOperator
		value    float64
		want     bool
	}{
		{"greater true", domain.CompareGreater, 10, true},
		{"greater false", domain.CompareGreater, 12, false},
		{"greater equal", domain.CompareGreaterEqual, 12, true},
		{"less", domain.CompareLess, 20, true},
		{"less equal false", domain.CompareLessEqual, 11, false},
		{"equal", domain.CompareEqual, 12, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			met, err := e.Evaluate(&domain.Condition{
				Kind:         domain.ConditionKindFieldCompare,
				Field:        "seats",
				Operator:     tc.operator,
				NumericValue: floatPtr(tc.value),
			}, contact)
			require.NoError(t, err)
			assert.Equal(t, tc.want, met)
		})
	}

	t.Run("non-numeric value evaluates false", func(t *testing.T) {
		met, err := e.Evaluate(&domain.Condition{
			Kind:         domain.ConditionKindFieldCompare,
			Field:        "plan",
			Operator:     domain.CompareGreater,
			NumericValue: floatPtr(1),
		}, contact)
		require.NoError(t, err)
		assert.False(t, met)
	})
}

func TestConditionEvaluator_TimeSinceEvent(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	e := evaluatorAt(now)

	contact := &domain.Contact{
		Email:      "jane@example.com",
		Properties: `{"last_purchase_at":"2026-03-05T12:00:00Z"}`,
	}

	t.Run("elapsed beyond threshold", func(t *testing.T) {
		// purchase was 5 days ago, condition asks for > 3 days
		met, err := e.Evaluate(&domain.Condition{
			Kind:     domain.ConditionKindTimeSinceEvent,
			Event:    "purchase",
			Operator: domain.CompareGreater,
			Duration: 3,
			Unit:     "days",
		}, contact)
		require.NoError(t, err)
		assert.True(t, met)
	})

	t.Run("elapsed within threshold", func(t *testing.T) {
		met, err := e.Evaluate(&domain.Condition{
			Kind:     domain.ConditionKindTimeSinceEvent,
			Event:    "purchase",
			Operator: domain.CompareLess,
			Duration: 3,
			Unit:     "days",
		}, contact)
		require.NoError(t, err)
		assert.False(t, met)
	})

	t.Run("contact without the event evaluates false", func(t *testing.T) {
		met, err := e.Evaluate(&domain.Condition{
			Kind:     domain.ConditionKindTimeSinceEvent,
			Event:    "login",
			Operator: domain.CompareGreater,
			Duration: 1,
			Unit:     "hours",
		}, contact)
		require.NoError(t, err)
		assert.False(t, met)
	})
}

func TestConditionEvaluator_MalformedConditionIsPermanent(t *testing.T) {
	e := NewConditionEvaluator()
	contact := &domain.Contact{Email: "jane@example.com"}

	_, err := e.Evaluate(nil, contact)
	require.Error(t, err)
	assert.True(t, domain.IsPermanent(err))

	_, err = e.Evaluate(&domain.Condition{Kind: "looks_at_moon"}, contact)
	require.Error(t, err)
	assert.True(t, domain.IsPermanent(err))

	// tag_has without a tag
	_, err = e.Evaluate(&domain.Condition{Kind: domain.ConditionKindTagHas}, contact)
	require.Error(t, err)
	assert.True(t, domain.IsPermanent(err))
}

func TestConditionEvaluator_EvaluateAll(t *testing.T) {
	e := NewConditionEvaluator()
	contact := &domain.Contact{
		Email:      "jane@example.com",
		Tags:       []string{"customer"},
		Properties: `{"plan":"pro"}`,
	}

	conds := []*domain.Condition{
		{Kind: domain.ConditionKindTagHas, Tag: "customer"},
		{Kind: domain.ConditionKindFieldEquals, Field: "plan", Value: "pro"},
	}
	met, err := e.EvaluateAll(conds, contact)
	require.NoError(t, err)
	assert.True(t, met)

	conds = append(conds, &domain.Condition{Kind: domain.ConditionKindTagHas, Tag: "vip"})
	met, err = e.EvaluateAll(conds, contact)
	require.NoError(t, err)
	assert.False(t, met)

	// empty set is vacuously true
	met, err = e.EvaluateAll(nil, contact)
	require.NoError(t, err)
	assert.True(t, met)
}
