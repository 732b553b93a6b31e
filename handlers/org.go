package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterly/rosterly/authz"
)

// OrgHandler handles organization management requests. Routes operate on
// explicit org ids; the service layer resolves the actor's role in that
// org for every call, so a stale default org never grants access here.
type OrgHandler struct {
	orgService *authz.OrgService
}

func NewOrgHandler(orgService *authz.OrgService) *OrgHandler {
	return &OrgHandler{orgService: orgService}
}

// statusForAuthzError maps core failure signals to HTTP statuses by
// identity, never by message text.
func statusForAuthzError(err error) int {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated), errors.Is(err, authz.ErrNoOrganization):
		return http.StatusUnauthorized
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, authz.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, authz.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, authz.ErrInvalidInput), errors.Is(err, authz.ErrCannotRemoveSelf):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CreateOrg handles POST /orgs
func (h *OrgHandler) CreateOrg(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input authz.CreateOrgInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	org, err := h.orgService.CreateOrg(c.Request.Context(), userID, input)
	if err != nil {
		c.JSON(statusForAuthzError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, org)
}

// ListOrgs handles GET /orgs
func (h *OrgHandler) ListOrgs(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	orgs, err := h.orgService.ListUserOrgsWithRole(c.Request.Context(), userID)
	if err != nil {
		c.JSON(statusForAuthzError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

// GetOrg handles GET /orgs/:id
func (h *OrgHandler) GetOrg(c *gin.Context) {
	userID := c.GetString("user_id")
	orgID := c.Param("id")

	org, err := h.orgService.GetOrg(c.Request.Context(), userID, orgID)
	if err != nil {
		c.JSON(statusForAuthzError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, org)
}

// UpdateOrg handles PATCH /orgs/:id
func (h *OrgHandler) UpdateOrg(c *gin.Context) {
	userID := c.GetString("user_id")
	orgID := c.Param("id")

	var input authz.UpdateOrgInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	org, err := h.orgService.UpdateOrg(c.Request.Context(), userID, orgID, input)
	if err != nil {
		c.JSON(statusForAuthzError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, org)
}

// UpdateOrgTheme handles PUT /orgs/:id/theme
func (h *OrgHandler) UpdateOrgTheme(c *gin.Context) {
	userID := c.GetString("user_id")
	orgID := c.Param("id")

	var input struct {
		Theme string `json:"theme" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	org, err := h.orgService.UpdateOrgTheme(c.Request.Context(), userID, orgID, input.Theme)
	if err != nil {
		c.JSON(statusForAuthzError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, org)
}

// DeleteOrg handles DELETE /orgs/:id
func (h *OrgHandler) DeleteOrg(c *gin.Context) {
	userID := c.GetString("user_id")
	orgID := c.Param("id")

	if err := h.orgService.DeleteOrg(c.Request.Context(), userID, orgID); err != nil {
		c.JSON(statusForAuthzError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "organization deleted"})
}

// GetOrgMembers handles GET /orgs/:id/members
func (h *OrgHandler) GetOrgMembers(c *gin.Context) {
	userID := c.GetString("user_id")
	orgID := c.Param("id")

	members, err := h.orgService.GetOrgMembers(c.Request.Context(), userID, orgID)
	if err != nil {
		c.JSON(statusForAuthzError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// AddOrgMember handles POST /orgs/:id/members
func (h *OrgHandler) AddOrgMember(c *gin.Context) {
	actorID := c.GetString("user_id")
	orgID := c.Param("id")

	var input authz.AddOrgMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.orgService.AddOrgMember(c.Request.Context(), actorID, orgID, input); err != nil {
		c.JSON(statusForAuthzError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "member added"})
}

// UpdateOrgMemberRole handles PATCH /orgs/:id/members/:user_id
func (h *OrgHandler) UpdateOrgMemberRole(c *gin.Context) {
	actorID := c.GetString("user_id")
	orgID := c.Param("id")
	targetUserID := c.Param("user_id")

	var input struct {
		Role authz.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.orgService.UpdateOrgMemberRole(c.Request.Context(), actorID, orgID, targetUserID, input.Role); err != nil {
		c.JSON(statusForAuthzError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

// RemoveOrgMember handles DELETE /orgs/:id/members/:user_id
func (h *OrgHandler) RemoveOrgMember(c *gin.Context) {
	actorID := c.GetString("user_id")
	orgID := c.Param("id")
	targetUserID := c.Param("user_id")

	if err := h.orgService.RemoveOrgMember(c.Request.Context(), actorID, orgID, targetUserID); err != nil {
		c.JSON(statusForAuthzError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "member removed"})
}

// SwitchDefaultOrg handles PUT /orgs/:id/default
func (h *OrgHandler) SwitchDefaultOrg(c *gin.Context) {
	userID := c.GetString("user_id")
	orgID := c.Param("id")

	if err := h.orgService.SwitchDefaultOrg(c.Request.Context(), userID, orgID); err != nil {
		c.JSON(statusForAuthzError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "default organization updated"})
}
