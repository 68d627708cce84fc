package domain

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_contact_repository.go -package mocks github.com/dripkit/dripkit/internal/domain ContactRepository

// Contact is the slim read/write surface the engine consumes. The full CRM
// data model lives elsewhere; steps only need standard fields, tags and the
// free-form properties bag.
type Contact struct {
	Email        string     `json:"email"`
	ExternalID   *string    `json:"external_id,omitempty"`
	FirstName    *string    `json:"first_name,omitempty"`
	LastName     *string    `json:"last_name,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Country      *string    `json:"country,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Properties   string     `json:"properties,omitempty"` // JSON object, queried with gjson paths
	Unsubscribed bool       `json:"unsubscribed"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// MutableContactFields lists the contact attributes an update_field step may
// write. Anything else is a permanent configuration error.
var MutableContactFields = map[string]bool{
	"first_name":  true,
	"last_name":   true,
	"phone":       true,
	"country":     true,
	"external_id": true,
}

// IsMutableContactField reports whether an update_field step may write the field
func IsMutableContactField(name string) bool {
	return MutableContactFields[name]
}

// HasTag reports whether the contact carries the tag
func (c *Contact) HasTag(name string) bool {
	for _, t := range c.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// StandardFieldValue returns the value of a standard (non-properties) field
func (c *Contact) StandardFieldValue(name string) (string, bool) {
	deref := func(p *string) (string, bool) {
		if p == nil {
			return "", false
		}
		return *p, true
	}
	switch name {
	case "email":
		return c.Email, true
	case "external_id":
		return deref(c.ExternalID)
	case "first_name":
		return deref(c.FirstName)
	case "last_name":
		return deref(c.LastName)
	case "phone":
		return deref(c.Phone)
	case "country":
		return deref(c.Country)
	default:
		return "", false
	}
}

// IsEligible reports whether the contact may still receive automation steps
func (c *Contact) IsEligible() bool {
	return !c.Unsubscribed && c.DeletedAt == nil
}

// Validate validates the contact
func (c *Contact) Validate() error {
	if c.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !enrollmentEmailRegex.MatchString(c.Email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ContactRepository defines the contact operations the engine consumes.
// Tag mutation is idempotent set membership: adding a tag twice leaves a
// single instance and reports nothing changed the second time.
type ContactRepository interface {
	GetByEmail(ctx context.Context, workspaceID, email string) (*Contact, error)

	// UpdateFields writes the given standard fields. Field names must pass
	// IsMutableContactField; the repository rejects unknown names.
	UpdateFields(ctx context.Context, workspaceID, email string, fields map[string]string) error

	// AddTags and RemoveTags return the tags that actually changed, for the
	// audit trail.
	AddTags(ctx context.Context, workspaceID, email string, tags []string) ([]string, error)
	RemoveTags(ctx context.Context, workspaceID, email string, tags []string) ([]string, error)

	// FindMatchingForTrigger returns contacts matching the automation's
	// trigger predicate that do not yet have an active or paused enrollment
	// in it.
	FindMatchingForTrigger(ctx context.Context, workspaceID string, automation *Automation, limit int) ([]*Contact, error)
}
