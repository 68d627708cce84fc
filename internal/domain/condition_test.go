package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestCondition_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cond    Condition
		wantErr string
	}{
		{"tag_has", Condition{Kind: ConditionKindTagHas, Tag: "vip"}, ""},
		{"tag_has without tag", Condition{Kind: ConditionKindTagHas}, "tag is required"},
		{"field_equals", Condition{Kind: ConditionKindFieldEquals, Field: "plan", Value: "pro"}, ""},
		{"field_equals without field", Condition{Kind: ConditionKindFieldEquals}, "field is required"},
		{"field_compare", Condition{Kind: ConditionKindFieldCompare, Field: "seats", Operator: CompareGreater, NumericValue: floatPtr(5)}, ""},
		{"field_compare bad operator", Condition{Kind: ConditionKindFieldCompare, Field: "seats", Operator: "~", NumericValue: floatPtr(5)}, "invalid operator"},
		{"field_compare without value", Condition{Kind: ConditionKindFieldCompare, Field: "seats", Operator: CompareGreater}, "numeric_value is required"},
		{"time_since_event", Condition{Kind: ConditionKindTimeSinceEvent, Event: "purchase", Operator: CompareGreater, Duration: 3, Unit: "days"}, ""},
		{"time_since_event without event", Condition{Kind: ConditionKindTimeSinceEvent, Operator: CompareGreater, Duration: 3, Unit: "days"}, "event is required"},
		{"time_since_event bad unit", Condition{Kind: ConditionKindTimeSinceEvent, Event: "purchase", Operator: CompareGreater, Duration: 3, Unit: "weeks"}, "invalid unit"},
		{"unknown kind", Condition{Kind: "astrology"}, "invalid condition kind"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cond.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestCompareOperator_Compare(t *testing.T) {
	assert.True(t, CompareGreater.Compare(2, 1))
	assert.False(t, CompareGreater.Compare(1, 1))
	assert.True(t, CompareGreaterEqual.Compare(1, 1))
	assert.True(t, CompareLess.Compare(1, 2))
	assert.True(t, CompareLessEqual.Compare(2, 2))
	assert.True(t, CompareEqual.Compare(3, 3))
	assert.False(t, CompareEqual.Compare(3, 4))
	assert.False(t, CompareOperator("~").Compare(1, 1))
}
