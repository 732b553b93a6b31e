package authz

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SimpleOrgRepository implements OrgRepository using SQL.
type SimpleOrgRepository struct {
	db *sql.DB
}

// NewSimpleOrgRepository creates a new SimpleOrgRepository.
func NewSimpleOrgRepository(db *sql.DB) *SimpleOrgRepository {
	return &SimpleOrgRepository{db: db}
}

var _ OrgRepository = (*SimpleOrgRepository)(nil)

// Create creates a new organization.
func (r *SimpleOrgRepository) Create(ctx context.Context, org *Organization) error {
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now

	// PostgreSQL JSON column wants valid JSON or NULL
	var theme interface{}
	if org.Theme != "" {
		theme = org.Theme
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, slug, description, theme, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, org.ID, org.Name, org.Slug, org.Description, theme, org.IsActive, org.CreatedAt, org.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// Get retrieves an organization by ID.
func (r *SimpleOrgRepository) Get(ctx context.Context, id string) (*Organization, error) {
	var org Organization
	var theme sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, COALESCE(description, ''), theme, is_active, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`, id).Scan(&org.ID, &org.Name, &org.Slug, &org.Description, &theme, &org.IsActive, &org.CreatedAt, &org.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	org.Theme = theme.String
	return &org, nil
}

// GetBySlug retrieves an organization by slug.
func (r *SimpleOrgRepository) GetBySlug(ctx context.Context, slug string) (*Organization, error) {
	var org Organization
	var theme sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, COALESCE(description, ''), theme, is_active, created_at, updated_at
		FROM organizations
		WHERE slug = $1
	`, slug).Scan(&org.ID, &org.Name, &org.Slug, &org.Description, &theme, &org.IsActive, &org.CreatedAt, &org.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	org.Theme = theme.String
	return &org, nil
}

// ListByUser returns organizations that a user belongs to.
func (r *SimpleOrgRepository) ListByUser(ctx context.Context, userID string) ([]Organization, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.name, o.slug, COALESCE(o.description, ''), o.theme, o.is_active, o.created_at, o.updated_at
		FROM organizations o
		JOIN memberships m ON m.org_id = o.id
		WHERE m.user_id = $1 AND o.is_active = true
		ORDER BY o.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user organizations: %w", err)
	}
	defer rows.Close()

	return scanOrganizations(rows)
}

// Update updates an organization.
func (r *SimpleOrgRepository) Update(ctx context.Context, org *Organization) error {
	org.UpdatedAt = time.Now()

	var theme interface{}
	if org.Theme != "" {
		theme = org.Theme
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE organizations
		SET name = $2, slug = $3, description = $4, theme = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`, org.ID, org.Name, org.Slug, org.Description, theme, org.IsActive, org.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes an organization.
func (r *SimpleOrgRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists checks if an organization exists.
func (r *SimpleOrgRepository) Exists(ctx context.Context, id string) bool {
	var exists bool
	r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM organizations WHERE id = $1)`, id).Scan(&exists)
	return exists
}

// SlugExists checks if a slug is already taken.
func (r *SimpleOrgRepository) SlugExists(ctx context.Context, slug string) bool {
	var exists bool
	r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = $1)`, slug).Scan(&exists)
	return exists
}

// SetDefaultOrg updates the user's default-org pointer.
func (r *SimpleOrgRepository) SetDefaultOrg(ctx context.Context, userID, orgID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET default_org_id = $2, updated_at = $3 WHERE id = $1
	`, userID, orgID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set default org: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Helper function to scan organization rows
func scanOrganizations(rows *sql.Rows) ([]Organization, error) {
	orgs := make([]Organization, 0) // empty slice, not nil (JSON: [] not null)
	for rows.Next() {
		var org Organization
		var theme sql.NullString
		if err := rows.Scan(&org.ID, &org.Name, &org.Slug, &org.Description, &theme, &org.IsActive, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		org.Theme = theme.String
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// NewSimpleBackend creates all simple implementations at once.
// Returns: ContextResolver, MembershipManager, OrgRepository.
func NewSimpleBackend(db *sql.DB) (ContextResolver, MembershipManager, OrgRepository) {
	return NewSimpleContextResolver(db),
		NewSimpleMembershipManager(db),
		NewSimpleOrgRepository(db)
}
