package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterly/rosterly/authz"
	"github.com/rosterly/rosterly/services"
)

// ClassHandler exposes classes and attendance. Its routes demonstrate
// permission-key mode: who may record attendance lives in the registry,
// not in the route definitions.
type ClassHandler struct {
	classService *services.ClassService
}

func NewClassHandler(classService *services.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// ListClasses handles GET /classes
func (h *ClassHandler) ListClasses(c *gin.Context) {
	octx, ok := authz.OrgContextFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	classes, err := h.classService.ListClasses(c.Request.Context(), octx.OrgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

// CreateClass handles POST /classes
func (h *ClassHandler) CreateClass(c *gin.Context) {
	octx, ok := authz.OrgContextFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input services.CreateClassInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class, err := h.classService.CreateClass(c.Request.Context(), octx.OrgID, input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, class)
}

// RecordAttendance handles POST /classes/:id/attendance
func (h *ClassHandler) RecordAttendance(c *gin.Context) {
	octx, ok := authz.OrgContextFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input services.RecordAttendanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.classService.RecordAttendance(c.Request.Context(), octx.OrgID, c.Param("id"), c.GetString("user_id"), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ListAttendance handles GET /classes/:id/attendance
func (h *ClassHandler) ListAttendance(c *gin.Context) {
	octx, ok := authz.OrgContextFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	recs, err := h.classService.ListAttendance(c.Request.Context(), octx.OrgID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": recs})
}
