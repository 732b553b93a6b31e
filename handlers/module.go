package handlers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/rosterly/rosterly/authz"
	"github.com/rosterly/rosterly/modules"
)

// ModuleHandler handles feature-module listing and toggling. Enable and
// disable routes sit behind the authz middleware (admin/owner), so the
// handler trusts the injected org context.
type ModuleHandler struct {
	moduleService *modules.Service
}

func NewModuleHandler(moduleService *modules.Service) *ModuleHandler {
	return &ModuleHandler{moduleService: moduleService}
}

// moduleListing is the per-module view returned by ListModules.
type moduleListing struct {
	modules.Module
	Enabled bool                     `json:"enabled"`
	Check   modules.RequirementCheck `json:"requirements"`
}

// ListModules handles GET /modules - the full catalog with per-org
// enablement state and requirement status.
func (h *ModuleHandler) ListModules(c *gin.Context) {
	octx, ok := authz.OrgContextFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	listing := make([]moduleListing, 0, len(modules.Catalog))
	for _, key := range sortedCatalogKeys() {
		mod := modules.Catalog[key]
		check, err := h.moduleService.CheckRequired(ctx, octx.OrgID, key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		listing = append(listing, moduleListing{
			Module:  mod,
			Enabled: h.moduleService.IsEnabled(ctx, octx.OrgID, key),
			Check:   check,
		})
	}
	c.JSON(http.StatusOK, gin.H{"modules": listing})
}

// GetEnabledModules handles GET /modules/enabled
func (h *ModuleHandler) GetEnabledModules(c *gin.Context) {
	octx, ok := authz.OrgContextFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	mods, err := h.moduleService.GetEnabled(c.Request.Context(), octx.OrgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"modules": mods})
}

// CheckModule handles GET /modules/:key/requirements
func (h *ModuleHandler) CheckModule(c *gin.Context) {
	octx, ok := authz.OrgContextFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	check, err := h.moduleService.CheckRequired(c.Request.Context(), octx.OrgID, modules.Key(c.Param("key")))
	if err != nil {
		c.JSON(statusForModuleError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, check)
}

// EnableModule handles POST /modules/:key/enable
func (h *ModuleHandler) EnableModule(c *gin.Context) {
	octx, ok := authz.OrgContextFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input struct {
		Settings string `json:"settings"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := modules.Key(c.Param("key"))
	if err := h.moduleService.Enable(c.Request.Context(), octx.OrgID, key, input.Settings); err != nil {
		var prereq *modules.PrerequisiteError
		if errors.As(err, &prereq) {
			// Full remediation list so the operator fixes it in one step
			c.JSON(http.StatusConflict, gin.H{
				"error":   "module prerequisites not satisfied",
				"missing": prereq.Missing,
			})
			return
		}
		c.JSON(statusForModuleError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "module": key})
}

// DisableModule handles POST /modules/:key/disable
func (h *ModuleHandler) DisableModule(c *gin.Context) {
	octx, ok := authz.OrgContextFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	key := modules.Key(c.Param("key"))
	if err := h.moduleService.Disable(c.Request.Context(), octx.OrgID, key); err != nil {
		c.JSON(statusForModuleError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "module": key})
}

// UpdateModuleSettings handles PUT /modules/:key/settings
func (h *ModuleHandler) UpdateModuleSettings(c *gin.Context) {
	octx, ok := authz.OrgContextFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input struct {
		Settings string `json:"settings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := modules.Key(c.Param("key"))
	if err := h.moduleService.UpdateSettings(c.Request.Context(), octx.OrgID, key, input.Settings); err != nil {
		c.JSON(statusForModuleError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "module": key})
}

func statusForModuleError(err error) int {
	switch {
	case errors.Is(err, modules.ErrUnknownModule):
		return http.StatusNotFound
	case errors.Is(err, modules.ErrCoreModule):
		return http.StatusBadRequest
	case errors.Is(err, modules.ErrNotConfigured):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func sortedCatalogKeys() []modules.Key {
	keys := make([]modules.Key, 0, len(modules.Catalog))
	for key := range modules.Catalog {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
