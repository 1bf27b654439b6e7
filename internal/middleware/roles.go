package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/kfujiw/raci-task-tracker/internal/constants"
	"github.com/kfujiw/raci-task-tracker/internal/database"
	apierrors "github.com/kfujiw/raci-task-tracker/internal/errors"
	"github.com/kfujiw/raci-task-tracker/internal/models"
)

// LoadUserRoles resolves the authenticated user's roles and stores them in
// the context for handlers and downstream middleware.
func LoadUserRoles() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var names []models.RoleName
		err := database.GetDB().
			Model(&models.UserRole{}).
			Joins("JOIN roles ON roles.id = user_roles.role_id").
			Where("user_roles.user_id = ?", userID).
			Pluck("roles.name", &names).Error
		if err != nil {
			apierrors.InternalError(c, "Failed to resolve user roles")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserRoles, names)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the user holds at least one of the
// required roles. Must run after LoadUserRoles.
func RequireRole(required ...models.RoleName) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := GetUserRoles(c)
		if !models.HasAnyRole(roles, required...) {
			apierrors.Forbidden(c, "Insufficient role for this action")
			c.Abort()
			return
		}
		c.Next()
	}
}
