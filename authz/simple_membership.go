package authz

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// SimpleMembershipManager implements MembershipManager using direct SQL.
type SimpleMembershipManager struct {
	db *sql.DB
}

// NewSimpleMembershipManager creates a new SimpleMembershipManager.
func NewSimpleMembershipManager(db *sql.DB) *SimpleMembershipManager {
	return &SimpleMembershipManager{db: db}
}

var _ MembershipManager = (*SimpleMembershipManager)(nil)

// AddMember adds a user to an organization. The ON CONFLICT clause keeps
// the one-row-per-(user,org) invariant: re-adding updates the role.
func (m *SimpleMembershipManager) AddMember(ctx context.Context, userID, orgID string, role Role) error {
	if !IsValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	now := time.Now()
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO memberships (id, user_id, org_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, org_id) DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
	`, uuid.New().String(), userID, orgID, role, now, now)

	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// UpdateMemberRole updates a user's role in an organization.
func (m *SimpleMembershipManager) UpdateMemberRole(ctx context.Context, userID, orgID string, newRole Role) error {
	if !IsValidRole(newRole) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, newRole)
	}
	result, err := m.db.ExecContext(ctx, `
		UPDATE memberships SET role = $1, updated_at = $2
		WHERE user_id = $3 AND org_id = $4
	`, newRole, time.Now(), userID, orgID)

	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveMember removes a user from an organization.
func (m *SimpleMembershipManager) RemoveMember(ctx context.Context, userID, orgID string) error {
	result, err := m.db.ExecContext(ctx, `
		DELETE FROM memberships WHERE user_id = $1 AND org_id = $2
	`, userID, orgID)

	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetMembership gets a specific membership row.
func (m *SimpleMembershipManager) GetMembership(ctx context.Context, userID, orgID string) (*Membership, error) {
	var mem Membership
	err := m.db.QueryRowContext(ctx, `
		SELECT id, user_id, org_id, role, created_at, updated_at
		FROM memberships
		WHERE user_id = $1 AND org_id = $2
	`, userID, orgID).Scan(&mem.ID, &mem.UserID, &mem.OrgID, &mem.Role, &mem.CreatedAt, &mem.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &mem, nil
}

// GetUserMemberships returns all memberships for a user.
func (m *SimpleMembershipManager) GetUserMemberships(ctx context.Context, userID string) ([]Membership, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, user_id, org_id, role, created_at, updated_at
		FROM memberships
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	return scanMemberships(rows)
}

// GetOrgMembers returns all members of an organization with user details.
func (m *SimpleMembershipManager) GetOrgMembers(ctx context.Context, orgID string) ([]Membership, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT m.id, m.user_id, m.org_id, m.role, m.created_at, m.updated_at,
		       COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM memberships m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.org_id = $1
		ORDER BY m.created_at
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list org members: %w", err)
	}
	defer rows.Close()

	members := make([]Membership, 0)
	for rows.Next() {
		var mem Membership
		if err := rows.Scan(&mem.ID, &mem.UserID, &mem.OrgID, &mem.Role, &mem.CreatedAt, &mem.UpdatedAt, &mem.Name, &mem.Email); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, mem)
	}
	return members, rows.Err()
}

// IsMember checks if a user belongs to an organization.
func (m *SimpleMembershipManager) IsMember(ctx context.Context, userID, orgID string) bool {
	var exists bool
	err := m.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM memberships WHERE user_id = $1 AND org_id = $2)
	`, userID, orgID).Scan(&exists)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("Error checking membership: %v", err)
		}
		return false
	}
	return exists
}

func scanMemberships(rows *sql.Rows) ([]Membership, error) {
	members := make([]Membership, 0) // empty slice, not nil (JSON: [] not null)
	for rows.Next() {
		var mem Membership
		if err := rows.Scan(&mem.ID, &mem.UserID, &mem.OrgID, &mem.Role, &mem.CreatedAt, &mem.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, mem)
	}
	return members, rows.Err()
}
