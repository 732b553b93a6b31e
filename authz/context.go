package authz

import (
	"context"
	"database/sql"
	"fmt"
)

// OrgContext is the resolved, request-scoped pair the rest of the system
// trusts: which organization the request operates in and what role the
// actor holds there. Derived fresh on every request and never cached
// across requests, so role changes take effect immediately.
type OrgContext struct {
	OrgID string `json:"org_id"`
	Role  Role   `json:"role"`
}

// ContextResolver produces the OrgContext for an authenticated actor.
type ContextResolver interface {
	// ResolveCurrent resolves the actor's default organization and their
	// role within it. Fails with ErrNoOrganization when the actor has no
	// default org or no membership row for it.
	ResolveCurrent(ctx context.Context, userID string) (*OrgContext, error)

	// ResolveForOrg resolves the actor's role in an explicitly supplied
	// organization, with the same failure mode.
	ResolveForOrg(ctx context.Context, userID, orgID string) (*OrgContext, error)
}

// SimpleContextResolver implements ContextResolver with direct SQL
// queries. Resolution is read-only, so cancellation mid-resolution never
// leaves partial state behind.
type SimpleContextResolver struct {
	db *sql.DB
}

// NewSimpleContextResolver creates a resolver over the given connection.
func NewSimpleContextResolver(db *sql.DB) *SimpleContextResolver {
	return &SimpleContextResolver{db: db}
}

var _ ContextResolver = (*SimpleContextResolver)(nil)

// ResolveCurrent looks up the actor's default-org pointer, then the
// membership row for it.
func (r *SimpleContextResolver) ResolveCurrent(ctx context.Context, userID string) (*OrgContext, error) {
	var orgID sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT default_org_id FROM users WHERE id = $1
	`, userID).Scan(&orgID)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoOrganization
		}
		return nil, fmt.Errorf("failed to resolve default org: %w", err)
	}
	if !orgID.Valid || orgID.String == "" {
		return nil, ErrNoOrganization
	}

	return r.ResolveForOrg(ctx, userID, orgID.String)
}

// ResolveForOrg looks up the membership row for (actor, org). A missing
// row is ErrNoOrganization - membership is never defaulted.
func (r *SimpleContextResolver) ResolveForOrg(ctx context.Context, userID, orgID string) (*OrgContext, error) {
	var role string
	err := r.db.QueryRowContext(ctx, `
		SELECT role FROM memberships WHERE user_id = $1 AND org_id = $2
	`, userID, orgID).Scan(&role)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoOrganization
		}
		return nil, fmt.Errorf("failed to resolve membership: %w", err)
	}

	return &OrgContext{OrgID: orgID, Role: Role(role)}, nil
}
