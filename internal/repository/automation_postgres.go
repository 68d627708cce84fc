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

// psql is a Squirrel StatementBuilder configured for PostgreSQL
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// AutomationRepository implements domain.AutomationRepository
type AutomationRepository struct {
	db *sql.DB
}

// NewAutomationRepository creates a new AutomationRepository
func NewAutomationRepository(db *sql.DB) domain.AutomationRepository {
	return &AutomationRepository{db: db}
}

// WithTransaction executes a function within a transaction
func (r *AutomationRepository) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Create adds a new automation. Steps travel embedded in the row as JSONB.
func (r *AutomationRepository) Create(ctx context.Context, workspaceID string, automation *domain.Automation) error {
	triggerJSON, err := json.Marshal(automation.Trigger)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger config: %w", err)
	}

	stepsJSON, err := json.Marshal(automation.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	statsJSON, err := json.Marshal(automation.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	now := time.Now().UTC()
	automation.CreatedAt = now
	automation.UpdatedAt = now

	query, args, err := psql.
		Insert("automations").
		Columns(
			"id", "workspace_id", "name", "status", "trigger_config",
			"steps", "stats", "created_at", "updated_at",
		).
		Values(
			automation.ID, workspaceID, automation.Name, automation.Status,
			triggerJSON, stepsJSON, statsJSON, automation.CreatedAt, automation.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create automation: %w", err)
	}

	return nil
}

var automationColumns = []string{
	"id", "workspace_id", "name", "status", "trigger_config",
	"steps", "stats", "created_at", "updated_at", "deleted_at",
}

func scanAutomation(scanner interface{ Scan(dest ...any) error }) (*domain.Automation, error) {
	var automation domain.Automation
	var triggerJSON, stepsJSON, statsJSON []byte
	var deletedAt sql.NullTime

	err := scanner.Scan(
		&automation.ID, &automation.WorkspaceID, &automation.Name, &automation.Status,
		&triggerJSON, &stepsJSON, &statsJSON, &automation.CreatedAt, &automation.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(triggerJSON, &automation.Trigger); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger config: %w", err)
	}
	if len(stepsJSON) > 0 {
		if err := json.Unmarshal(stepsJSON, &automation.Steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
		}
	}
	if len(statsJSON) > 0 {
		if err := json.Unmarshal(statsJSON, &automation.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
		}
	}

	if deletedAt.Valid {
		automation.DeletedAt = &deletedAt.Time
	}

	return &automation, nil
}

// GetByID retrieves an automation by ID. Soft-deleted automations are excluded.
func (r *AutomationRepository) GetByID(ctx context.Context, workspaceID, id string) (*domain.Automation, error) {
	query, args, err := psql.
		Select(automationColumns...).
		From("automations").
		Where(sq.Eq{"id": id, "workspace_id": workspaceID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	automation, err := scanAutomation(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "automation", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get automation: %w", err)
	}

	return automation, nil
}

// List retrieves automations with filtering
func (r *AutomationRepository) List(ctx context.Context, workspaceID string, filter domain.AutomationFilter) ([]*domain.Automation, int, error) {
	whereClause := sq.Eq{"workspace_id": workspaceID}

	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			statuses[i] = string(s)
		}
		whereClause["status"] = statuses
	}
	if filter.TriggerType != "" {
		whereClause["trigger_config->>'type'"] = string(filter.TriggerType)
	}
	if !filter.IncludeDeleted {
		whereClause["deleted_at"] = nil
	}

	countQuery, countArgs, err := psql.
		Select("COUNT(*)").
		From("automations").
		Where(whereClause).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count automations: %w", err)
	}

	dataQuery := psql.
		Select(automationColumns...).
		From("automations").
		Where(whereClause).
		OrderBy("created_at DESC")

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
		return nil, 0, fmt.Errorf("failed to list automations: %w", err)
	}
	defer rows.Close()

	var automations []*domain.Automation
	for rows.Next() {
		automation, err := scanAutomation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan automation row: %w", err)
		}
		automations = append(automations, automation)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating automation rows: %w", err)
	}

	return automations, count, nil
}

// ListActive returns active automations across all workspaces
func (r *AutomationRepository) ListActive(ctx context.Context) ([]*domain.Automation, error) {
	query, args, err := psql.
		Select(automationColumns...).
		From("automations").
		Where(sq.Eq{"status": domain.AutomationStatusActive, "deleted_at": nil}).
		OrderBy("workspace_id", "created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active automations: %w", err)
	}
	defer rows.Close()

	var automations []*domain.Automation
	for rows.Next() {
		automation, err := scanAutomation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation row: %w", err)
		}
		automations = append(automations, automation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating automation rows: %w", err)
	}

	return automations, nil
}

// Update updates an automation
func (r *AutomationRepository) Update(ctx context.Context, workspaceID string, automation *domain.Automation) error {
	triggerJSON, err := json.Marshal(automation.Trigger)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger config: %w", err)
	}

	stepsJSON, err := json.Marshal(automation.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	statsJSON, err := json.Marshal(automation.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	automation.UpdatedAt = time.Now().UTC()

	query, args, err := psql.
		Update("automations").
		Set("name", automation.Name).
		Set("status", automation.Status).
		Set("trigger_config", triggerJSON).
		Set("steps", stepsJSON).
		Set("stats", statsJSON).
		Set("updated_at", automation.UpdatedAt).
		Where(sq.Eq{"id": automation.ID, "workspace_id": workspaceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update automation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrNotFound{Entity: "automation", ID: automation.ID}
	}

	return nil
}

// Delete soft-deletes an automation and cancels its active enrollments
func (r *AutomationRepository) Delete(ctx context.Context, workspaceID, id string) error {
	now := time.Now().UTC()

	cancelQuery := `
		UPDATE automation_enrollments
		SET status = 'cancelled', cancelled_at = $1, exit_reason = 'automation_deleted'
		WHERE workspace_id = $2 AND automation_id = $3 AND status IN ('active', 'paused')
	`
	if _, err := r.db.ExecContext(ctx, cancelQuery, now, workspaceID, id); err != nil {
		return fmt.Errorf("failed to cancel active enrollments: %w", err)
	}

	query, args, err := psql.
		Update("automations").
		Set("deleted_at", now).
		Set("updated_at", now).
		Where(sq.Eq{"id": id, "workspace_id": workspaceID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to soft-delete automation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrNotFound{Entity: "automation", ID: id}
	}

	return nil
}

// IncrementStat increments a single stat counter for an automation.
// Valid stat names: enrolled, completed, cancelled, failed.
func (r *AutomationRepository) IncrementStat(ctx context.Context, workspaceID, automationID, statName string) error {
	validStats := map[string]bool{
		"enrolled":  true,
		"completed": true,
		"cancelled": true,
		"failed":    true,
	}
	if !validStats[statName] {
		return fmt.Errorf("invalid stat name: %s", statName)
	}

	// JSONB update so the increment happens in the database, not read-modify-write
	query := fmt.Sprintf(`
		UPDATE automations
		SET stats = COALESCE(stats, '{}'::jsonb) ||
			jsonb_build_object('%s', COALESCE((stats->>'%s')::int, 0) + 1),
			updated_at = $1
		WHERE id = $2 AND workspace_id = $3
	`, statName, statName)

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), automationID, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to increment automation stat: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrNotFound{Entity: "automation", ID: automationID}
	}

	return nil
}
