package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/kfujiw/raci-task-tracker/internal/errors"
	"github.com/kfujiw/raci-task-tracker/internal/middleware"
	"github.com/kfujiw/raci-task-tracker/internal/services"
)

// NotificationHandler serves derived due-soon and overdue alerts.
type NotificationHandler struct {
	instanceService *services.InstanceService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(instanceService *services.InstanceService) *NotificationHandler {
	return &NotificationHandler{instanceService: instanceService}
}

// ListNotifications derives the current user's alerts from their visible
// instances. Nothing is stored; the projection is recomputed per request.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	notifications, err := h.instanceService.DeriveNotifications(userID, middleware.GetUserRoles(c), time.Now())
	if err != nil {
		apierrors.InternalError(c, "Failed to derive notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
