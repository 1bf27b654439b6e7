package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/kfujiw/raci-task-tracker/internal/errors"
	"github.com/kfujiw/raci-task-tracker/internal/middleware"
	"github.com/kfujiw/raci-task-tracker/internal/services"
)

// DashboardHandler serves the role-scoped dashboard and admin maintenance
// operations.
type DashboardHandler struct {
	dashboardService *services.DashboardService
	instanceService  *services.InstanceService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *services.DashboardService, instanceService *services.InstanceService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		instanceService:  instanceService,
	}
}

// GetDashboard returns the aggregated view for the current user.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	dashboard, err := h.dashboardService.Build(userID, middleware.GetUserRoles(c), time.Now())
	if err != nil {
		apierrors.InternalError(c, "Failed to build dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// RunRecurrenceSweep materializes pending instances for recurring templates.
// Admin only; idempotent within a recurrence period.
func (h *DashboardHandler) RunRecurrenceSweep(c *gin.Context) {
	created, err := h.instanceService.RunRecurrenceSweep(time.Now())
	if err != nil {
		apierrors.InternalError(c, "Recurrence sweep failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"instances_created": created})
}
