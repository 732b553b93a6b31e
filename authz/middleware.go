package authz

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Gin context keys set by the upstream authentication middleware and by
// this package on a granted request. Handlers behind the middleware trust
// these values and never re-derive them.
const (
	CtxUserID  = "user_id"
	CtxOrgID   = "org_id"
	CtxOrgRole = "org_role"
)

// deniedMessage is the uniform body for every denial. It deliberately
// leaks nothing about which organizations or roles exist.
const deniedMessage = "you may not perform this action"

// AuthzMiddleware is the single enforcement point for protected routes.
// It resolves the caller's OrgContext fresh on every request and checks
// the resolved role against a role list or a registry permission. It
// holds no mutable state, so one instance serves any number of
// concurrent requests.
type AuthzMiddleware struct {
	resolver ContextResolver
}

// NewAuthzMiddleware creates a middleware bound to a context resolver.
func NewAuthzMiddleware(resolver ContextResolver) *AuthzMiddleware {
	return &AuthzMiddleware{resolver: resolver}
}

// RequireRoles gates a route with an explicit role list. The caller's
// role must appear in the list (set membership, so student/teacher work
// here too). Context-resolution failures answer 401, role mismatches
// 403; the wrapped handler never runs on either.
func (m *AuthzMiddleware) RequireRoles(allowed ...Role) gin.HandlerFunc {
	if len(allowed) == 0 {
		panic("authz: RequireRoles needs at least one role")
	}
	return func(c *gin.Context) {
		octx, ok := m.resolveContext(c)
		if !ok {
			return
		}

		if !HasAnyRole(octx.Role, allowed...) {
			log.Printf("AUTHZ DENIED - role %s not in %v (org %s)", octx.Role, allowed, octx.OrgID)
			c.JSON(http.StatusForbidden, gin.H{"error": deniedMessage})
			c.Abort()
			return
		}

		grant(c, octx)
	}
}

// RequirePermission gates a route with a named registry permission, so
// every route sharing the key shares one source of truth for who may
// pass. An unknown key is a wiring defect and panics at router
// construction, not per request.
func (m *AuthzMiddleware) RequirePermission(key Permission) gin.HandlerFunc {
	allowed, err := ResolvePermission(key)
	if err != nil {
		panic(fmt.Sprintf("authz: route bound to unknown permission %q", key))
	}
	return func(c *gin.Context) {
		octx, ok := m.resolveContext(c)
		if !ok {
			return
		}

		if !HasAnyRole(octx.Role, allowed...) {
			log.Printf("AUTHZ DENIED - role %s lacks %s (org %s)", octx.Role, key, octx.OrgID)
			c.JSON(http.StatusForbidden, gin.H{"error": deniedMessage})
			c.Abort()
			return
		}

		grant(c, octx)
	}
}

// resolveContext turns the authenticated user into an OrgContext. Both
// failure modes (no actor, no org/membership) are authentication
// failures, distinct from the 403 a role mismatch produces. Credentials
// are never logged.
func (m *AuthzMiddleware) resolveContext(c *gin.Context) (*OrgContext, bool) {
	userID := c.GetString(CtxUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": deniedMessage})
		c.Abort()
		return nil, false
	}

	octx, err := m.resolver.ResolveCurrent(c.Request.Context(), userID)
	if err != nil {
		if !errors.Is(err, ErrNoOrganization) {
			log.Printf("AUTHZ ERROR - context resolution failed: %v", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": deniedMessage})
		c.Abort()
		return nil, false
	}
	return octx, true
}

// grant injects the trusted context and forwards to the wrapped handler.
// The handler's response passes through untouched.
func grant(c *gin.Context, octx *OrgContext) {
	c.Set(CtxOrgID, octx.OrgID)
	c.Set(CtxOrgRole, string(octx.Role))
	c.Next()
}

// OrgContextFrom extracts the middleware-injected context inside a
// handler. ok is false when the handler is (incorrectly) mounted without
// the middleware.
func OrgContextFrom(c *gin.Context) (OrgContext, bool) {
	orgID := c.GetString(CtxOrgID)
	role := c.GetString(CtxOrgRole)
	if orgID == "" || role == "" {
		return OrgContext{}, false
	}
	return OrgContext{OrgID: orgID, Role: Role(role)}, true
}
