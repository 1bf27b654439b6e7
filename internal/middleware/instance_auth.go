package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kfujiw/raci-task-tracker/internal/constants"
	"github.com/kfujiw/raci-task-tracker/internal/database"
	apierrors "github.com/kfujiw/raci-task-tracker/internal/errors"
	"github.com/kfujiw/raci-task-tracker/internal/models"
)

// RequireInstanceAccess checks that the user may see the instance named in
// the URL and stores it in the context. Visibility follows the instance's
// template.
func RequireInstanceAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		instanceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid instance ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var instance models.TaskInstance
		if err := database.GetDB().
			Preload("Template").
			Preload("Template.PrimaryResponsible").
			Preload("Template.Accountable").
			Preload("Template.BackupResponsible").
			First(&instance, instanceID).Error; err != nil {
			apierrors.NotFound(c, "Instance not found")
			c.Abort()
			return
		}

		if !canAccessTemplate(c, userID, &instance.Template) {
			// 404 instead of 403 to avoid leaking instance existence
			apierrors.NotFound(c, "Instance not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyInstance, instance)
		c.Next()
	}
}

// GetInstance retrieves the instance loaded by RequireInstanceAccess
func GetInstance(c *gin.Context) (models.TaskInstance, bool) {
	instanceInterface, exists := c.Get(constants.ContextKeyInstance)
	if !exists {
		return models.TaskInstance{}, false
	}
	instance, ok := instanceInterface.(models.TaskInstance)
	return instance, ok
}
