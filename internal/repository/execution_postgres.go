package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dripkit/dripkit/internal/domain"
)

// ExecutionRepository implements domain.ExecutionRepository
type ExecutionRepository struct {
	db *sql.DB
}

// NewExecutionRepository creates a new ExecutionRepository
func NewExecutionRepository(db *sql.DB) domain.ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// Create adds a new execution
func (r *ExecutionRepository) Create(ctx context.Context, workspaceID string, execution *domain.Execution) error {
	return r.create(ctx, r.db, workspaceID, execution)
}

// CreateTx adds a new execution within an existing transaction
func (r *ExecutionRepository) CreateTx(ctx context.Context, tx *sql.Tx, workspaceID string, execution *domain.Execution) error {
	return r.create(ctx, tx, workspaceID, execution)
}

func (r *ExecutionRepository) create(ctx context.Context, ex execer, workspaceID string, execution *domain.Execution) error {
	resultJSON, err := json.Marshal(execution.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal execution result: %w", err)
	}

	if execution.CreatedAt.IsZero() {
		execution.CreatedAt = time.Now().UTC()
	}

	query, args, err := psql.
		Insert("automation_executions").
		Columns(
			"id", "workspace_id", "enrollment_id", "step_id", "step_order",
			"status", "scheduled_at", "started_at", "completed_at", "attempts",
			"error", "result", "created_at",
		).
		Values(
			execution.ID, workspaceID, execution.EnrollmentID, execution.StepID,
			execution.StepOrder, execution.Status, execution.ScheduledAt,
			execution.StartedAt, execution.CompletedAt, execution.Attempts,
			execution.Error, resultJSON, execution.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create execution: %w", err)
	}

	return nil
}

var executionColumns = []string{
	"id", "enrollment_id", "step_id", "step_order", "status", "scheduled_at",
	"started_at", "completed_at", "attempts", "error", "result", "created_at",
}

func scanExecution(scanner interface{ Scan(dest ...any) error }, execution *domain.Execution) error {
	var startedAt, completedAt sql.NullTime
	var errMsg sql.NullString
	var resultJSON []byte

	err := scanner.Scan(
		&execution.ID, &execution.EnrollmentID, &execution.StepID,
		&execution.StepOrder, &execution.Status, &execution.ScheduledAt,
		&startedAt, &completedAt, &execution.Attempts, &errMsg, &resultJSON,
		&execution.CreatedAt,
	)
	if err != nil {
		return err
	}

	if startedAt.Valid {
		execution.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		execution.CompletedAt = &completedAt.Time
	}
	if errMsg.Valid {
		execution.Error = &errMsg.String
	}
	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &execution.Result); err != nil {
			return fmt.Errorf("failed to unmarshal execution result: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an execution by ID
func (r *ExecutionRepository) GetByID(ctx context.Context, workspaceID, id string) (*domain.Execution, error) {
	query, args, err := psql.
		Select(executionColumns...).
		From("automation_executions").
		Where(sq.Eq{"id": id, "workspace_id": workspaceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var execution domain.Execution
	err = scanExecution(r.db.QueryRowContext(ctx, query, args...), &execution)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "execution", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}

	return &execution, nil
}

// ListByEnrollment returns the execution history of an enrollment ordered by
// creation time
func (r *ExecutionRepository) ListByEnrollment(ctx context.Context, workspaceID, enrollmentID string) ([]*domain.Execution, error) {
	query, args, err := psql.
		Select(executionColumns...).
		From("automation_executions").
		Where(sq.Eq{"workspace_id": workspaceID, "enrollment_id": enrollmentID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()

	var executions []*domain.Execution
	for rows.Next() {
		var execution domain.Execution
		if err := scanExecution(rows, &execution); err != nil {
			return nil, fmt.Errorf("failed to scan execution row: %w", err)
		}
		executions = append(executions, &execution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating execution rows: %w", err)
	}

	return executions, nil
}

// Update updates an execution
func (r *ExecutionRepository) Update(ctx context.Context, workspaceID string, execution *domain.Execution) error {
	resultJSON, err := json.Marshal(execution.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal execution result: %w", err)
	}

	query, args, err := psql.
		Update("automation_executions").
		Set("status", execution.Status).
		Set("scheduled_at", execution.ScheduledAt).
		Set("started_at", execution.StartedAt).
		Set("completed_at", execution.CompletedAt).
		Set("attempts", execution.Attempts).
		Set("error", execution.Error).
		Set("result", resultJSON).
		Where(sq.Eq{"id": execution.ID, "workspace_id": workspaceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update execution: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrNotFound{Entity: "execution", ID: execution.ID}
	}

	return nil
}

// ClaimDue atomically claims due executions across all workspaces. FOR UPDATE
// SKIP LOCKED means concurrent scheduler passes never double-claim a row, and
// RETURNING carries the status each row held before the claim so the caller
// can tell a firing wait apart from a first pass.
func (r *ExecutionRepository) ClaimDue(ctx context.Context, before time.Time, limit int) ([]*domain.DueExecution, error) {
	query := `
		WITH due AS (
			SELECT id, status AS prev_status
			FROM automation_executions
			WHERE status IN ('pending', 'waiting', 'failed')
			  AND scheduled_at <= $1
			ORDER BY scheduled_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE automation_executions e
		SET status = 'processing', started_at = $3
		FROM due
		WHERE e.id = due.id
		RETURNING e.workspace_id, due.prev_status,
			e.id, e.enrollment_id, e.step_id, e.step_order, e.status,
			e.scheduled_at, e.started_at, e.completed_at, e.attempts, e.error,
			e.result, e.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, before, limit, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to claim due executions: %w", err)
	}
	defer rows.Close()

	var claimed []*domain.DueExecution
	for rows.Next() {
		var due domain.DueExecution
		var startedAt, completedAt sql.NullTime
		var errMsg sql.NullString
		var resultJSON []byte

		err := rows.Scan(
			&due.WorkspaceID, &due.PrevStatus,
			&due.ID, &due.EnrollmentID, &due.StepID, &due.StepOrder, &due.Status,
			&due.ScheduledAt, &startedAt, &completedAt, &due.Attempts, &errMsg,
			&resultJSON, &due.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claimed execution: %w", err)
		}

		if startedAt.Valid {
			due.StartedAt = &startedAt.Time
		}
		if completedAt.Valid {
			due.CompletedAt = &completedAt.Time
		}
		if errMsg.Valid {
			due.Error = &errMsg.String
		}
		if len(resultJSON) > 0 {
			if err := json.Unmarshal(resultJSON, &due.Result); err != nil {
				return nil, fmt.Errorf("failed to unmarshal execution result: %w", err)
			}
		}

		claimed = append(claimed, &due)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claimed executions: %w", err)
	}

	return claimed, nil
}

// Claim claims a single pending execution for immediate in-pass dispatch
func (r *ExecutionRepository) Claim(ctx context.Context, workspaceID, id string) (bool, error) {
	query := `
		UPDATE automation_executions
		SET status = 'processing', started_at = $1
		WHERE id = $2 AND workspace_id = $3 AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, workspaceID)
	if err != nil {
		return false, fmt.Errorf("failed to claim execution: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// CancelPendingForEnrollment cancels the non-terminal, unclaimed executions
// of an enrollment
func (r *ExecutionRepository) CancelPendingForEnrollment(ctx context.Context, workspaceID, enrollmentID string) (int64, error) {
	query := `
		UPDATE automation_executions
		SET status = 'cancelled', completed_at = $1
		WHERE workspace_id = $2 AND enrollment_id = $3
		  AND status IN ('pending', 'waiting', 'failed')
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), workspaceID, enrollmentID)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel pending executions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// ReapTerminal deletes old terminal executions
func (r *ExecutionRepository) ReapTerminal(ctx context.Context, completedBefore, failedBefore time.Time) (int64, error) {
	query := `
		DELETE FROM automation_executions
		WHERE (status = 'completed' AND completed_at < $1)
		   OR (status IN ('failed_permanently', 'cancelled') AND completed_at < $2)
	`

	result, err := r.db.ExecContext(ctx, query, completedBefore, failedBefore)
	if err != nil {
		return 0, fmt.Errorf("failed to reap terminal executions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// ResetStale fails processing executions stuck past the timeout so the retry
// path can pick them up. Attempts is bumped to keep the retry bound honest
// for work lost mid-flight.
func (r *ExecutionRepository) ResetStale(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		UPDATE automation_executions
		SET status = 'failed', attempts = attempts + 1,
			error = 'execution timeout: worker did not finish processing',
			scheduled_at = $1
		WHERE status = 'processing' AND started_at < $2
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to reset stale executions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
