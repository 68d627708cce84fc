package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dripkit/dripkit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupExecutionMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *ExecutionRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewExecutionRepository(db).(*ExecutionRepository)
	return db, mock, repo
}

func createTestExecution(id, enrollmentID string) *domain.Execution {
	now := time.Now().UTC()
	return &domain.Execution{
		ID:           id,
		EnrollmentID: enrollmentID,
		StepID:       "step-1",
		StepOrder:    1,
		Status:       domain.ExecutionStatusPending,
		ScheduledAt:  now,
		CreatedAt:    now,
	}
}

func TestExecutionRepository_Create(t *testing.T) {
	db, mock, repo := setupExecutionMock(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	execution := createTestExecution("exec-123", "enr-123")

	mock.ExpectExec("INSERT INTO automation_executions").
		WithArgs(
			execution.ID,
			"workspace-123",
			execution.EnrollmentID,
			execution.StepID,
			execution.StepOrder,
			execution.Status,
			sqlmock.AnyArg(), // scheduled_at
			nil,              // started_at
			nil,              // completed_at
			0,                // attempts
			nil,              // error
			sqlmock.AnyArg(), // result JSON
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(ctx, "workspace-123", execution)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionRepository_GetByID(t *testing.T) {
	db, mock, repo := setupExecutionMock(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "enrollment_id", "step_id", "step_order", "status", "scheduled_at",
		"started_at", "completed_at", "attempts", "error", "result", "created_at",
	}).AddRow(
		"exec-123", "enr-123", "step-1", 1, "completed", now,
		now, now, 1, nil, []byte(`{"message_id":"msg-1"}`), now,
	)

	mock.ExpectQuery("SELECT .* FROM automation_executions").
		WillReturnRows(rows)

	execution, err := repo.GetByID(ctx, "workspace-123", "exec-123")
	assert.NoError(t, err)
	require.NotNil(t, execution)
	assert.Equal(t, domain.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, "msg-1", execution.Result["message_id"])
	require.NotNil(t, execution.StartedAt)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Test not found
	mock.ExpectQuery("SELECT .* FROM automation_executions").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(ctx, "workspace-123", "exec-123")
	var notFound *domain.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionRepository_ListByEnrollment(t *testing.T) {
	db, mock, repo := setupExecutionMock(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "enrollment_id", "step_id", "step_order", "status", "scheduled_at",
		"started_at", "completed_at", "attempts", "error", "result", "created_at",
	}).AddRow(
		"exec-1", "enr-123", "step-1", 1, "completed", now,
		now, now, 0, nil, []byte(`{"message_id":"msg-1"}`), now,
	).AddRow(
		"exec-2", "enr-123", "step-2", 2, "waiting", now.Add(72*time.Hour),
		nil, nil, 0, nil, nil, now,
	)

	mock.ExpectQuery("SELECT .* FROM automation_executions.*ORDER BY created_at ASC").
		WillReturnRows(rows)

	executions, err := repo.ListByEnrollment(ctx, "workspace-123", "enr-123")
	assert.NoError(t, err)
	require.Len(t, executions, 2)
	assert.Equal(t, domain.ExecutionStatusCompleted, executions[0].Status)
	assert.Equal(t, domain.ExecutionStatusWaiting, executions[1].Status)
	assert.Nil(t, executions[1].StartedAt)
	assert.NoError(t, mock.ExpectationsWereMet())

	// An enrollment with no executions yields an empty slice
	mock.ExpectQuery("SELECT .* FROM automation_executions").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "enrollment_id", "step_id", "step_order", "status", "scheduled_at",
			"started_at", "completed_at", "attempts", "error", "result", "created_at",
		}))

	executions, err = repo.ListByEnrollment(ctx, "workspace-123", "enr-empty")
	assert.NoError(t, err)
	assert.Empty(t, executions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionRepository_ClaimDue(t *testing.T) {
	db, mock, repo := setupExecutionMock(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"workspace_id", "prev_status",
		"id", "enrollment_id", "step_id", "step_order", "status",
		"scheduled_at", "started_at", "completed_at", "attempts", "error",
		"result", "created_at",
	}).AddRow(
		"workspace-123", "waiting",
		"exec-123", "enr-123", "step-2", 2, "processing",
		now, now, nil, 0, nil, nil, now,
	).AddRow(
		"workspace-456", "pending",
		"exec-456", "enr-456", "step-1", 1, "processing",
		now, now, nil, 2, "smtp timeout", nil, now,
	)

	mock.ExpectQuery("WITH due AS").
		WithArgs(sqlmock.AnyArg(), 100, sqlmock.AnyArg()).
		WillReturnRows(rows)

	claimed, err := repo.ClaimDue(ctx, now, 100)
	assert.NoError(t, err)
	require.Len(t, claimed, 2)

	assert.Equal(t, "workspace-123", claimed[0].WorkspaceID)
	assert.Equal(t, domain.ExecutionStatusWaiting, claimed[0].PrevStatus)
	assert.Equal(t, domain.ExecutionStatusProcessing, claimed[0].Status)

	assert.Equal(t, domain.ExecutionStatusPending, claimed[1].PrevStatus)
	assert.Equal(t, 2, claimed[1].Attempts)
	require.NotNil(t, claimed[1].Error)
	assert.Equal(t, "smtp timeout", *claimed[1].Error)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Empty batch
	mock.ExpectQuery("WITH due AS").
		WillReturnRows(sqlmock.NewRows([]string{
			"workspace_id", "prev_status",
			"id", "enrollment_id", "step_id", "step_order", "status",
			"scheduled_at", "started_at", "completed_at", "attempts", "error",
			"result", "created_at",
		}))

	claimed, err = repo.ClaimDue(ctx, now, 100)
	assert.NoError(t, err)
	assert.Empty(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionRepository_Claim(t *testing.T) {
	db, mock, repo := setupExecutionMock(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	// Claim won
	mock.ExpectExec("UPDATE automation_executions").
		WithArgs(sqlmock.AnyArg(), "exec-123", "workspace-123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	claimed, err := repo.Claim(ctx, "workspace-123", "exec-123")
	assert.NoError(t, err)
	assert.True(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Claim lost: the row already left pending
	mock.ExpectExec("UPDATE automation_executions").
		WithArgs(sqlmock.AnyArg(), "exec-123", "workspace-123").
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err = repo.Claim(ctx, "workspace-123", "exec-123")
	assert.NoError(t, err)
	assert.False(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionRepository_CancelPendingForEnrollment(t *testing.T) {
	db, mock, repo := setupExecutionMock(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	mock.ExpectExec("UPDATE automation_executions").
		WithArgs(sqlmock.AnyArg(), "workspace-123", "enr-123").
		WillReturnResult(sqlmock.NewResult(0, 3))

	cancelled, err := repo.CancelPendingForEnrollment(ctx, "workspace-123", "enr-123")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), cancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionRepository_ReapTerminal(t *testing.T) {
	db, mock, repo := setupExecutionMock(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectExec("DELETE FROM automation_executions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 42))

	reaped, err := repo.ReapTerminal(ctx, now.Add(-24*time.Hour), now.Add(-7*24*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, int64(42), reaped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionRepository_ResetStale(t *testing.T) {
	db, mock, repo := setupExecutionMock(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	mock.ExpectExec("UPDATE automation_executions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	reset, err := repo.ResetStale(ctx, time.Now().UTC().Add(-time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, int64(2), reset)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Database error
	mock.ExpectExec("UPDATE automation_executions").
		WillReturnError(fmt.Errorf("database error"))

	_, err = repo.ResetStale(ctx, time.Now().UTC().Add(-time.Hour))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reset stale executions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionRepository_Update(t *testing.T) {
	db, mock, repo := setupExecutionMock(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	execution := createTestExecution("exec-123", "enr-123")
	execution.Status = domain.ExecutionStatusCompleted

	mock.ExpectExec("UPDATE automation_executions SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Update(ctx, "workspace-123", execution))
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec("UPDATE automation_executions SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(ctx, "workspace-123", execution)
	var notFound *domain.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
