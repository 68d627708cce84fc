package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollment_Validate(t *testing.T) {
	valid := func() *Enrollment {
		return &Enrollment{
			ID:           "enr-1",
			AutomationID: "auto-1",
			ContactEmail: "jane@example.com",
			Status:       EnrollmentStatusActive,
		}
	}

	t.Run("valid enrollment", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("invalid email", func(t *testing.T) {
		e := valid()
		e.ContactEmail = "not-an-email"
		err := e.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid email format")
	})

	t.Run("invalid status", func(t *testing.T) {
		e := valid()
		e.Status = "sleeping"
		assert.Error(t, e.Validate())
	})
}

func TestEnrollmentStatus_IsTerminal(t *testing.T) {
	assert.False(t, EnrollmentStatusActive.IsTerminal())
	assert.False(t, EnrollmentStatusPaused.IsTerminal())
	assert.True(t, EnrollmentStatusCompleted.IsTerminal())
	assert.True(t, EnrollmentStatusCancelled.IsTerminal())
	assert.True(t, EnrollmentStatusFailed.IsTerminal())
}
