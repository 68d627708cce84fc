package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dripkit/dripkit/internal/domain"
	"github.com/lib/pq"
)

// ContactRepository implements domain.ContactRepository
type ContactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *sql.DB) domain.ContactRepository {
	return &ContactRepository{db: db}
}

var contactColumns = []string{
	"email", "external_id", "first_name", "last_name", "phone", "country",
	"tags", "properties", "unsubscribed", "created_at", "updated_at",
	"deleted_at",
}

func scanContact(scanner interface{ Scan(dest ...any) error }) (*domain.Contact, error) {
	var contact domain.Contact
	var externalID, firstName, lastName, phone, country sql.NullString
	var properties sql.NullString
	var deletedAt sql.NullTime

	err := scanner.Scan(
		&contact.Email, &externalID, &firstName, &lastName, &phone, &country,
		pq.Array(&contact.Tags), &properties, &contact.Unsubscribed,
		&contact.CreatedAt, &contact.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	assign := func(dst **string, src sql.NullString) {
		if src.Valid {
			*dst = &src.String
		}
	}
	assign(&contact.ExternalID, externalID)
	assign(&contact.FirstName, firstName)
	assign(&contact.LastName, lastName)
	assign(&contact.Phone, phone)
	assign(&contact.Country, country)

	if properties.Valid {
		contact.Properties = properties.String
	}
	if deletedAt.Valid {
		contact.DeletedAt = &deletedAt.Time
	}

	return &contact, nil
}

// GetByEmail retrieves a contact by email
func (r *ContactRepository) GetByEmail(ctx context.Context, workspaceID, email string) (*domain.Contact, error) {
	query, args, err := psql.
		Select(contactColumns...).
		From("contacts").
		Where(sq.Eq{"workspace_id": workspaceID, "email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	contact, err := scanContact(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "contact", ID: email}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return contact, nil
}

// UpdateFields writes standard contact fields. Unknown field names are
// rejected before touching the row.
func (r *ContactRepository) UpdateFields(ctx context.Context, workspaceID, email string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	update := psql.Update("contacts")
	for name, value := range fields {
		if !domain.IsMutableContactField(name) {
			return fmt.Errorf("field %s is not a mutable contact field", name)
		}
		update = update.Set(name, value)
	}

	query, args, err := update.
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"workspace_id": workspaceID, "email": email, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update contact fields: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrNotFound{Entity: "contact", ID: email}
	}

	return nil
}

// AddTags appends tags the contact does not hold yet and returns the ones
// actually added. Adding a present tag is a no-op.
func (r *ContactRepository) AddTags(ctx context.Context, workspaceID, email string, tags []string) ([]string, error) {
	contact, err := r.GetByEmail(ctx, workspaceID, email)
	if err != nil {
		return nil, err
	}

	var added []string
	for _, tag := range tags {
		if !contact.HasTag(tag) {
			added = append(added, tag)
		}
	}
	if len(added) == 0 {
		return nil, nil
	}

	// array_cat keeps the operation a single statement; the read above is
	// only for reporting what changed
	query := `
		UPDATE contacts
		SET tags = (
			SELECT ARRAY(SELECT DISTINCT unnest(array_cat(tags, $1)))
		), updated_at = $2
		WHERE workspace_id = $3 AND email = $4 AND deleted_at IS NULL
	`

	if _, err := r.db.ExecContext(ctx, query, pq.Array(tags), time.Now().UTC(), workspaceID, email); err != nil {
		return nil, fmt.Errorf("failed to add contact tags: %w", err)
	}

	return added, nil
}

// RemoveTags strips tags the contact holds and returns the ones actually
// removed. Removing an absent tag is a no-op.
func (r *ContactRepository) RemoveTags(ctx context.Context, workspaceID, email string, tags []string) ([]string, error) {
	contact, err := r.GetByEmail(ctx, workspaceID, email)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, tag := range tags {
		if contact.HasTag(tag) {
			removed = append(removed, tag)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}

	query := `
		UPDATE contacts
		SET tags = (
			SELECT ARRAY(SELECT unnest(tags) EXCEPT SELECT unnest($1::text[]))
		), updated_at = $2
		WHERE workspace_id = $3 AND email = $4 AND deleted_at IS NULL
	`

	if _, err := r.db.ExecContext(ctx, query, pq.Array(tags), time.Now().UTC(), workspaceID, email); err != nil {
		return nil, fmt.Errorf("failed to remove contact tags: %w", err)
	}

	return removed, nil
}

// FindMatchingForTrigger returns eligible contacts matching the automation's
// trigger predicate that have no active or paused enrollment in it yet.
// Behavior events are consumed as last_<kind>_at timestamps in the contact's
// properties bag, maintained by the upstream CRM.
func (r *ContactRepository) FindMatchingForTrigger(ctx context.Context, workspaceID string, automation *domain.Automation, limit int) ([]*domain.Contact, error) {
	if !automation.Trigger.Type.RequiresDiscovery() {
		return nil, nil
	}

	builder := psql.
		Select(contactColumns...).
		From("contacts").
		Where(sq.Eq{"workspace_id": workspaceID, "unsubscribed": false, "deleted_at": nil}).
		Where(`NOT EXISTS (
			SELECT 1 FROM automation_enrollments e
			WHERE e.workspace_id = contacts.workspace_id
			  AND e.contact_email = contacts.email
			  AND e.automation_id = ?
			  AND e.status IN ('active', 'paused')
		)`, automation.ID)

	switch automation.Trigger.Type {
	case domain.TriggerTypeTagAdded:
		builder = builder.Where("? = ANY(tags)", automation.Trigger.TagName)
	case domain.TriggerTypeDateBased:
		// anniversary match on a date property (e.g. birthday, signup date)
		builder = builder.Where(
			`to_char((properties->>?)::date, 'MM-DD') = to_char(NOW(), 'MM-DD')`,
			automation.Trigger.DateField,
		)
	case domain.TriggerTypeBehaviorBased:
		lookback := automation.Trigger.LookbackDays
		if lookback <= 0 {
			lookback = 7
		}
		builder = builder.Where(
			`(properties->>?)::timestamptz >= NOW() - make_interval(days => ?)`,
			"last_"+automation.Trigger.EventKind+"_at", lookback,
		)
	default:
		return nil, fmt.Errorf("trigger type %s does not support discovery", automation.Trigger.Type)
	}

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find matching contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact row: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact rows: %w", err)
	}

	return contacts, nil
}
