package domain

import (
	"fmt"
)

// ConditionKind identifies the predicate a condition evaluates
type ConditionKind string

const (
	ConditionKindTagHas         ConditionKind = "tag_has"
	ConditionKindFieldEquals    ConditionKind = "field_equals"
	ConditionKindFieldCompare   ConditionKind = "field_compare"
	ConditionKindTimeSinceEvent ConditionKind = "time_since_event"
)

// IsValid checks if the condition kind is valid
func (k ConditionKind) IsValid() bool {
	switch k {
	case ConditionKindTagHas, ConditionKindFieldEquals,
		ConditionKindFieldCompare, ConditionKindTimeSinceEvent:
		return true
	default:
		return false
	}
}

// CompareOperator is a numeric comparison operator
type CompareOperator string

const (
	CompareGreater      CompareOperator = ">"
	CompareGreaterEqual CompareOperator = ">="
	CompareLess         CompareOperator = "<"
	CompareLessEqual    CompareOperator = "<="
	CompareEqual        CompareOperator = "=="
)

// IsValid checks if the compare operator is valid
func (o CompareOperator) IsValid() bool {
	switch o {
	case CompareGreater, CompareGreaterEqual, CompareLess, CompareLessEqual, CompareEqual:
		return true
	default:
		return false
	}
}

// Condition is a single predicate evaluated against a contact.
//
//   - tag_has: contact carries Tag
//   - field_equals: string equality on Field against Value
//   - field_compare: numeric comparison on Field with Operator and NumericValue
//   - time_since_event: elapsed time since the contact event named by Event,
//     compared with Operator against Duration+Unit
type Condition struct {
	Kind ConditionKind `json:"kind"`

	Tag string `json:"tag,omitempty"`

	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`

	Operator     CompareOperator `json:"operator,omitempty"`
	NumericValue *float64        `json:"numeric_value,omitempty"`

	Event    string `json:"event,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Unit     string `json:"unit,omitempty"` // "minutes", "hours", "days"
}

// Validate validates the condition
func (c *Condition) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("invalid condition kind: %s", c.Kind)
	}

	switch c.Kind {
	case ConditionKindTagHas:
		if c.Tag == "" {
			return fmt.Errorf("tag is required for tag_has conditions")
		}
	case ConditionKindFieldEquals:
		if c.Field == "" {
			return fmt.Errorf("field is required for field_equals conditions")
		}
	case ConditionKindFieldCompare:
		if c.Field == "" {
			return fmt.Errorf("field is required for field_compare conditions")
		}
		if !c.Operator.IsValid() {
			return fmt.Errorf("invalid operator: %s", c.Operator)
		}
		if c.NumericValue == nil {
			return fmt.Errorf("numeric_value is required for field_compare conditions")
		}
	case ConditionKindTimeSinceEvent:
		if c.Event == "" {
			return fmt.Errorf("event is required for time_since_event conditions")
		}
		if !c.Operator.IsValid() {
			return fmt.Errorf("invalid operator: %s", c.Operator)
		}
		if c.Duration <= 0 {
			return fmt.Errorf("duration must be positive")
		}
		switch c.Unit {
		case "minutes", "hours", "days":
		default:
			return fmt.Errorf("invalid unit: %s (must be minutes, hours, or days)", c.Unit)
		}
	}

	return nil
}

// Compare applies the operator to two float64 values
func (o CompareOperator) Compare(left, right float64) bool {
	switch o {
	case CompareGreater:
		return left > right
	case CompareGreaterEqual:
		return left >= right
	case CompareLess:
		return left < right
	case CompareLessEqual:
		return left <= right
	case CompareEqual:
		return left == right
	default:
		return false
	}
}
