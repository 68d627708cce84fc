package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/tidwall/gjson"
)

// ConditionEvaluator evaluates predicates against a contact. Standard fields
// are read off the entity; everything else resolves as a gjson path into the
// contact's properties document. Behavior events are consumed as
// last_<kind>_at timestamps in the same document.
type ConditionEvaluator struct {
	now func() time.Time
}

// NewConditionEvaluator creates a new ConditionEvaluator
func NewConditionEvaluator() *ConditionEvaluator {
	return &ConditionEvaluator{now: func() time.Time { return time.Now().UTC() }}
}

// Evaluate returns the boolean result of the condition for the contact. A
// malformed condition is a permanent error; a missing field or event simply
// evaluates false.
func (e *ConditionEvaluator) Evaluate(cond *domain.Condition, contact *domain.Contact) (bool, error) {
	if cond == nil {
		return false, domain.NewPermanentError("condition is nil", nil)
	}
	if err := cond.Validate(); err != nil {
		return false, domain.NewPermanentError("malformed condition", err)
	}

	switch cond.Kind {
	case domain.ConditionKindTagHas:
		return contact.HasTag(cond.Tag), nil

	case domain.ConditionKindFieldEquals:
		value, ok := e.fieldValue(cond.Field, contact)
		if !ok {
			return false, nil
		}
		return value == cond.Value, nil

	case domain.ConditionKindFieldCompare:
		raw, ok := e.fieldValue(cond.Field, contact)
		if !ok {
			return false, nil
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return false, nil
		}
		return cond.Operator.Compare(value, *cond.NumericValue), nil

	case domain.ConditionKindTimeSinceEvent:
		occurredAt, ok := e.eventTime(cond.Event, contact)
		if !ok {
			return false, nil
		}
		threshold, err := eventThreshold(cond)
		if err != nil {
			return false, domain.NewPermanentError("malformed condition", err)
		}
		elapsed := e.now().Sub(occurredAt)
		return cond.Operator.Compare(elapsed.Seconds(), threshold.Seconds()), nil

	default:
		return false, domain.NewPermanentError(fmt.Sprintf("unknown condition kind: %s", cond.Kind), nil)
	}
}

// EvaluateAll reports whether the contact satisfies every condition
func (e *ConditionEvaluator) EvaluateAll(conds []*domain.Condition, contact *domain.Contact) (bool, error) {
	for _, cond := range conds {
		met, err := e.Evaluate(cond, contact)
		if err != nil {
			return false, err
		}
		if !met {
			return false, nil
		}
	}
	return true, nil
}

func (e *ConditionEvaluator) fieldValue(name string, contact *domain.Contact) (string, bool) {
	if value, ok := contact.StandardFieldValue(name); ok {
		return value, true
	}
	result := gjson.Get(contact.Properties, name)
	if !result.Exists() {
		return "", false
	}
	return result.String(), true
}

func (e *ConditionEvaluator) eventTime(event string, contact *domain.Contact) (time.Time, bool) {
	result := gjson.Get(contact.Properties, "last_"+event+"_at")
	if !result.Exists() {
		return time.Time{}, false
	}
	occurredAt, err := time.Parse(time.RFC3339, result.String())
	if err != nil {
		return time.Time{}, false
	}
	return occurredAt, true
}

func eventThreshold(cond *domain.Condition) (time.Duration, error) {
	switch cond.Unit {
	case "minutes":
		return time.Duration(cond.Duration) * time.Minute, nil
	case "hours":
		return time.Duration(cond.Duration) * time.Hour, nil
	case "days":
		return time.Duration(cond.Duration) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid unit: %s", cond.Unit)
	}
}
