package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kfujiw/raci-task-tracker/internal/constants"
	"github.com/kfujiw/raci-task-tracker/internal/database"
	apierrors "github.com/kfujiw/raci-task-tracker/internal/errors"
	"github.com/kfujiw/raci-task-tracker/internal/models"
)

// RequireTemplateAccess checks that the user may see the template named in
// the URL and stores it in the context. Admins see everything; otherwise the
// user must be the creator, named in the RACI assignment, or a manager whose
// team contains a RACI participant.
func RequireTemplateAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid template ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var template models.TaskTemplate
		if err := database.GetDB().
			Preload("PrimaryResponsible").
			Preload("Accountable").
			Preload("BackupResponsible").
			Preload("SOP").
			First(&template, templateID).Error; err != nil {
			apierrors.NotFound(c, "Template not found")
			c.Abort()
			return
		}

		if !canAccessTemplate(c, userID, &template) {
			// 404 instead of 403 to avoid leaking template existence
			apierrors.NotFound(c, "Template not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTemplate, template)
		c.Next()
	}
}

// GetTemplate retrieves the template loaded by RequireTemplateAccess
func GetTemplate(c *gin.Context) (models.TaskTemplate, bool) {
	templateInterface, exists := c.Get(constants.ContextKeyTemplate)
	if !exists {
		return models.TaskTemplate{}, false
	}
	template, ok := templateInterface.(models.TaskTemplate)
	return template, ok
}

func canAccessTemplate(c *gin.Context, userID uint64, template *models.TaskTemplate) bool {
	roles := GetUserRoles(c)

	if models.HasAnyRole(roles, models.RoleAdmin) {
		return true
	}
	if template.CreatedByID == userID || template.References(userID) {
		return true
	}

	if models.HasAnyRole(roles, models.RoleManager) {
		var user models.User
		if err := database.GetDB().First(&user, userID).Error; err != nil || user.TeamID == nil {
			return false
		}

		raciIDs := []uint64{template.PrimaryResponsibleUserID, template.AccountableUserID}
		if template.BackupResponsibleUserID != nil {
			raciIDs = append(raciIDs, *template.BackupResponsibleUserID)
		}

		var count int64
		database.GetDB().
			Model(&models.User{}).
			Where("id IN ? AND team_id = ?", raciIDs, *user.TeamID).
			Count(&count)
		return count > 0
	}

	return false
}
