package authz

import (
	"context"
	"time"
)

// Membership associates an actor with an organization and a role.
// At most one row exists per (user, org) pair.
type Membership struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OrgID     string    `json:"org_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	InvitedBy string    `json:"invited_by,omitempty"`
	// User details (populated when fetching org members)
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// MembershipManager manages user-organization relationships. This is the
// write side of authorization; ContextResolver is the read/check side.
type MembershipManager interface {
	// AddMember adds a user to an organization with a role. Upserts, so
	// the one-row-per-(user,org) invariant holds.
	AddMember(ctx context.Context, userID, orgID string, role Role) error

	// UpdateMemberRole updates a user's role in an organization.
	UpdateMemberRole(ctx context.Context, userID, orgID string, newRole Role) error

	// RemoveMember removes a user from an organization.
	RemoveMember(ctx context.Context, userID, orgID string) error

	// GetMembership gets a specific membership row.
	GetMembership(ctx context.Context, userID, orgID string) (*Membership, error)

	// GetUserMemberships returns all memberships for a user.
	GetUserMemberships(ctx context.Context, userID string) ([]Membership, error)

	// GetOrgMembers returns all members of an organization.
	GetOrgMembers(ctx context.Context, orgID string) ([]Membership, error)

	// IsMember checks if a user belongs to an organization (any role).
	IsMember(ctx context.Context, userID, orgID string) bool
}
