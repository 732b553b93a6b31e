package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// OrgService handles organization business logic. It combines the context
// resolver, membership manager and repository, and is the only writer of
// memberships and default-org pointers.
type OrgService struct {
	resolver ContextResolver
	members  MembershipManager
	repo     OrgRepository
}

// NewOrgService creates a new organization service.
func NewOrgService(resolver ContextResolver, members MembershipManager, repo OrgRepository) *OrgService {
	return &OrgService{
		resolver: resolver,
		members:  members,
		repo:     repo,
	}
}

// roleIn resolves the actor's role in an org. ErrNoOrganization collapses
// to ErrForbidden here: service callers never learn whether the org
// exists or who belongs to it.
func (s *OrgService) roleIn(ctx context.Context, actorID, orgID string) (Role, error) {
	if actorID == "" {
		return "", ErrUnauthenticated
	}
	octx, err := s.resolver.ResolveForOrg(ctx, actorID, orgID)
	if err != nil {
		if errors.Is(err, ErrNoOrganization) {
			return "", ErrForbidden
		}
		return "", err
	}
	return octx.Role, nil
}

// CreateOrgInput represents input for creating an organization.
type CreateOrgInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// CreateOrg creates a new organization and adds the creator as owner.
// The new org becomes the creator's default when they had none.
func (s *OrgService) CreateOrg(ctx context.Context, userID string, input CreateOrgInput) (*Organization, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if input.Name == "" || input.Slug == "" {
		return nil, ErrInvalidInput
	}

	if s.repo.SlugExists(ctx, input.Slug) {
		return nil, fmt.Errorf("%w: slug already taken", ErrAlreadyExists)
	}

	org := &Organization{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	if err := s.members.AddMember(ctx, userID, org.ID, RoleOwner); err != nil {
		// Rollback org creation
		_ = s.repo.Delete(ctx, org.ID)
		return nil, fmt.Errorf("failed to add owner membership: %w", err)
	}

	if _, err := s.resolver.ResolveCurrent(ctx, userID); errors.Is(err, ErrNoOrganization) {
		if err := s.repo.SetDefaultOrg(ctx, userID, org.ID); err != nil {
			return nil, fmt.Errorf("failed to set default org: %w", err)
		}
	}

	return org, nil
}

// GetOrg retrieves an organization by ID (members only).
func (s *OrgService) GetOrg(ctx context.Context, userID, orgID string) (*Organization, error) {
	if _, err := s.roleIn(ctx, userID, orgID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID)
}

// OrganizationWithRole represents an organization with the user's role.
type OrganizationWithRole struct {
	Organization
	UserRole Role `json:"user_role"`
}

// ListUserOrgsWithRole returns all organizations a user belongs to with
// their role in each.
func (s *OrgService) ListUserOrgsWithRole(ctx context.Context, userID string) ([]OrganizationWithRole, error) {
	orgs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]OrganizationWithRole, len(orgs))
	for i, org := range orgs {
		role, err := s.roleIn(ctx, userID, org.ID)
		if err != nil && !errors.Is(err, ErrForbidden) {
			return nil, err
		}
		result[i] = OrganizationWithRole{
			Organization: org,
			UserRole:     role,
		}
	}
	return result, nil
}

// UpdateOrgInput represents input for updating an organization.
type UpdateOrgInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateOrg updates an organization (requires admin or above).
func (s *OrgService) UpdateOrg(ctx context.Context, userID, orgID string, input UpdateOrgInput) (*Organization, error) {
	role, err := s.roleIn(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if !HasPermission(role, RoleAdmin) {
		return nil, ErrForbidden
	}

	org, err := s.repo.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		org.Name = *input.Name
	}
	if input.Description != nil {
		org.Description = *input.Description
	}

	if err := s.repo.Update(ctx, org); err != nil {
		return nil, err
	}

	return org, nil
}

// UpdateOrgTheme replaces the organization's theme blob. Gated through
// the permission registry so UI gating and this check share one source
// of truth.
func (s *OrgService) UpdateOrgTheme(ctx context.Context, userID, orgID, theme string) (*Organization, error) {
	role, err := s.roleIn(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if !Can(role, PermissionManageTheme) {
		return nil, ErrForbidden
	}

	org, err := s.repo.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	org.Theme = theme

	if err := s.repo.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// DeleteOrg deletes an organization (owner only).
func (s *OrgService) DeleteOrg(ctx context.Context, userID, orgID string) error {
	role, err := s.roleIn(ctx, userID, orgID)
	if err != nil {
		return err
	}
	if role != RoleOwner {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, orgID)
}

// AddOrgMemberInput represents input for adding a member.
type AddOrgMemberInput struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// AddOrgMember adds a member to an organization (MANAGE_MEMBERS).
func (s *OrgService) AddOrgMember(ctx context.Context, actorID, orgID string, input AddOrgMemberInput) error {
	role, err := s.roleIn(ctx, actorID, orgID)
	if err != nil {
		return err
	}
	if !Can(role, PermissionManageMembers) {
		return ErrForbidden
	}

	// Only org creation produces an owner
	if input.Role == RoleOwner {
		return fmt.Errorf("%w: cannot add another owner", ErrInvalidInput)
	}
	if !IsValidRole(input.Role) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, input.Role)
	}

	return s.members.AddMember(ctx, input.UserID, orgID, input.Role)
}

// UpdateOrgMemberRole updates a member's role (MANAGE_MEMBERS).
func (s *OrgService) UpdateOrgMemberRole(ctx context.Context, actorID, orgID, targetUserID string, newRole Role) error {
	role, err := s.roleIn(ctx, actorID, orgID)
	if err != nil {
		return err
	}
	if !Can(role, PermissionManageMembers) {
		return ErrForbidden
	}

	target, err := s.members.GetMembership(ctx, targetUserID, orgID)
	if err != nil {
		return err
	}
	if target.Role == RoleOwner {
		return fmt.Errorf("%w: cannot change owner's role", ErrInvalidInput)
	}
	if newRole == RoleOwner {
		return fmt.Errorf("%w: cannot promote to owner", ErrInvalidInput)
	}

	return s.members.UpdateMemberRole(ctx, targetUserID, orgID, newRole)
}

// RemoveOrgMember removes a member from an organization (MANAGE_MEMBERS).
func (s *OrgService) RemoveOrgMember(ctx context.Context, actorID, orgID, targetUserID string) error {
	role, err := s.roleIn(ctx, actorID, orgID)
	if err != nil {
		return err
	}
	if !Can(role, PermissionManageMembers) {
		return ErrForbidden
	}

	target, err := s.members.GetMembership(ctx, targetUserID, orgID)
	if err != nil {
		return err
	}
	if target.Role == RoleOwner {
		return fmt.Errorf("%w: cannot remove owner", ErrInvalidInput)
	}
	if actorID == targetUserID {
		return ErrCannotRemoveSelf
	}

	return s.members.RemoveMember(ctx, targetUserID, orgID)
}

// GetOrgMembers returns all members of an organization (members only).
func (s *OrgService) GetOrgMembers(ctx context.Context, userID, orgID string) ([]Membership, error) {
	if _, err := s.roleIn(ctx, userID, orgID); err != nil {
		return nil, err
	}
	return s.members.GetOrgMembers(ctx, orgID)
}

// SwitchDefaultOrg changes which organization the actor's requests
// resolve against. Membership in the target org is required; subsequent
// requests re-resolve, so the change takes effect immediately.
func (s *OrgService) SwitchDefaultOrg(ctx context.Context, userID, orgID string) error {
	if _, err := s.roleIn(ctx, userID, orgID); err != nil {
		return err
	}
	return s.repo.SetDefaultOrg(ctx, userID, orgID)
}
