package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitboard/internal/middleware"
	"gitboard/internal/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetSummary returns the caller's task totals across their projects
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	summary, err := h.dashboardService.UserSummary(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetAdminStats returns instance-wide statistics; global admins only
func (h *DashboardHandler) GetAdminStats(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	stats, err := h.dashboardService.AdminSummary(userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAdminOnly):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		}
		return
	}

	c.JSON(http.StatusOK, stats)
}
