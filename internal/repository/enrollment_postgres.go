package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dripkit/dripkit/internal/domain"
	"github.com/lib/pq"
)

// execer abstracts *sql.DB and *sql.Tx for writes
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// EnrollmentRepository implements domain.EnrollmentRepository
type EnrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *sql.DB) domain.EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create adds a new enrollment. The automation_enrollments table carries a
// partial unique index on (automation_id, contact_email) restricted to
// active/paused rows; a unique violation means the contact is already in the
// automation and surfaces as ErrAlreadyEnrolled.
func (r *EnrollmentRepository) Create(ctx context.Context, workspaceID string, enrollment *domain.Enrollment) error {
	return r.create(ctx, r.db, workspaceID, enrollment)
}

// CreateTx adds a new enrollment within an existing transaction
func (r *EnrollmentRepository) CreateTx(ctx context.Context, tx *sql.Tx, workspaceID string, enrollment *domain.Enrollment) error {
	return r.create(ctx, tx, workspaceID, enrollment)
}

func (r *EnrollmentRepository) create(ctx context.Context, ex execer, workspaceID string, enrollment *domain.Enrollment) error {
	contextJSON, err := json.Marshal(enrollment.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal enrollment context: %w", err)
	}

	query, args, err := psql.
		Insert("automation_enrollments").
		Columns(
			"id", "workspace_id", "automation_id", "contact_email", "status",
			"current_step_order", "enrolled_at", "completed_at", "cancelled_at",
			"failed_at", "exit_reason", "context",
		).
		Values(
			enrollment.ID, workspaceID, enrollment.AutomationID, enrollment.ContactEmail,
			enrollment.Status, enrollment.CurrentStepOrder, enrollment.EnrolledAt,
			enrollment.CompletedAt, enrollment.CancelledAt, enrollment.FailedAt,
			enrollment.ExitReason, contextJSON,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return &domain.ErrAlreadyEnrolled{
				AutomationID: enrollment.AutomationID,
				ContactEmail: enrollment.ContactEmail,
			}
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	return nil
}

var enrollmentColumns = []string{
	"id", "automation_id", "contact_email", "status", "current_step_order",
	"enrolled_at", "completed_at", "cancelled_at", "failed_at", "exit_reason",
	"context",
}

func scanEnrollment(scanner interface{ Scan(dest ...any) error }) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	var completedAt, cancelledAt, failedAt sql.NullTime
	var exitReason sql.NullString
	var contextJSON []byte

	err := scanner.Scan(
		&enrollment.ID, &enrollment.AutomationID, &enrollment.ContactEmail,
		&enrollment.Status, &enrollment.CurrentStepOrder, &enrollment.EnrolledAt,
		&completedAt, &cancelledAt, &failedAt, &exitReason, &contextJSON,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		enrollment.CompletedAt = &completedAt.Time
	}
	if cancelledAt.Valid {
		enrollment.CancelledAt = &cancelledAt.Time
	}
	if failedAt.Valid {
		enrollment.FailedAt = &failedAt.Time
	}
	if exitReason.Valid {
		enrollment.ExitReason = &exitReason.String
	}
	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &enrollment.Context); err != nil {
			return nil, fmt.Errorf("failed to unmarshal enrollment context: %w", err)
		}
	}

	return &enrollment, nil
}

// GetByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, workspaceID, id string) (*domain.Enrollment, error) {
	query, args, err := psql.
		Select(enrollmentColumns...).
		From("automation_enrollments").
		Where(sq.Eq{"id": id, "workspace_id": workspaceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	enrollment, err := scanEnrollment(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "enrollment", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return enrollment, nil
}

// GetByAutomationAndEmail retrieves the most recent enrollment of a contact
// in an automation
func (r *EnrollmentRepository) GetByAutomationAndEmail(ctx context.Context, workspaceID, automationID, email string) (*domain.Enrollment, error) {
	query, args, err := psql.
		Select(enrollmentColumns...).
		From("automation_enrollments").
		Where(sq.Eq{
			"workspace_id":  workspaceID,
			"automation_id": automationID,
			"contact_email": email,
		}).
		OrderBy("enrolled_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	enrollment, err := scanEnrollment(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "enrollment", ID: automationID + "/" + email}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return enrollment, nil
}

// List retrieves enrollments with filtering
func (r *EnrollmentRepository) List(ctx context.Context, workspaceID string, filter domain.EnrollmentFilter) ([]*domain.Enrollment, int, error) {
	whereClause := sq.Eq{"workspace_id": workspaceID}

	if filter.AutomationID != "" {
		whereClause["automation_id"] = filter.AutomationID
	}
	if filter.ContactEmail != "" {
		whereClause["contact_email"] = filter.ContactEmail
	}
	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			statuses[i] = string(s)
		}
		whereClause["status"] = statuses
	}

	countQuery, countArgs, err := psql.
		Select("COUNT(*)").
		From("automation_enrollments").
		Where(whereClause).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count enrollments: %w", err)
	}

	dataQuery := psql.
		Select(enrollmentColumns...).
		From("automation_enrollments").
		Where(whereClause).
		OrderBy("enrolled_at DESC")

	if filter.Limit > 0 {
		dataQuery = dataQuery.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		dataQuery = dataQuery.Offset(uint64(filter.Offset))
	}

	query, args, err := dataQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*domain.Enrollment
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan enrollment row: %w", err)
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating enrollment rows: %w", err)
	}

	return enrollments, count, nil
}

// Update updates an enrollment
func (r *EnrollmentRepository) Update(ctx context.Context, workspaceID string, enrollment *domain.Enrollment) error {
	contextJSON, err := json.Marshal(enrollment.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal enrollment context: %w", err)
	}

	query, args, err := psql.
		Update("automation_enrollments").
		Set("status", enrollment.Status).
		Set("current_step_order", enrollment.CurrentStepOrder).
		Set("completed_at", enrollment.CompletedAt).
		Set("cancelled_at", enrollment.CancelledAt).
		Set("failed_at", enrollment.FailedAt).
		Set("exit_reason", enrollment.ExitReason).
		Set("context", contextJSON).
		Where(sq.Eq{"id": enrollment.ID, "workspace_id": workspaceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrNotFound{Entity: "enrollment", ID: enrollment.ID}
	}

	return nil
}
