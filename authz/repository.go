package authz

import (
	"context"
	"time"
)

// Organization represents a tenant. All data and roles are scoped to one
// organization per request.
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Theme       string    `json:"theme,omitempty"` // JSON string
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrgRepository handles CRUD operations for organizations.
// Purely a data access layer - no authorization logic.
type OrgRepository interface {
	// Create creates a new organization.
	Create(ctx context.Context, org *Organization) error

	// Get retrieves an organization by ID.
	Get(ctx context.Context, id string) (*Organization, error)

	// GetBySlug retrieves an organization by slug.
	GetBySlug(ctx context.Context, slug string) (*Organization, error)

	// ListByUser returns organizations that a user belongs to.
	ListByUser(ctx context.Context, userID string) ([]Organization, error)

	// Update updates an organization.
	Update(ctx context.Context, org *Organization) error

	// Delete deletes an organization (cascades to memberships).
	Delete(ctx context.Context, id string) error

	// Exists checks if an organization exists.
	Exists(ctx context.Context, id string) bool

	// SlugExists checks if a slug is already taken.
	SlugExists(ctx context.Context, slug string) bool

	// SetDefaultOrg updates the user's default-org pointer. The caller
	// must have verified membership first.
	SetDefaultOrg(ctx context.Context, userID, orgID string) error
}
