package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kfujiw/raci-task-tracker/internal/dto"
	apierrors "github.com/kfujiw/raci-task-tracker/internal/errors"
	"github.com/kfujiw/raci-task-tracker/internal/middleware"
	"github.com/kfujiw/raci-task-tracker/internal/models"
	"github.com/kfujiw/raci-task-tracker/internal/services"
	"github.com/kfujiw/raci-task-tracker/internal/utils"
)

// TemplateHandler coordinates task-template HTTP handlers.
type TemplateHandler struct {
	templateService *services.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// CreateTemplate creates a new task template. Non-recurring templates get
// their single instance materialized immediately.
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTemplateRequest struct {
		Title                    string  `json:"title" binding:"required"`
		Description              string  `json:"description"`
		PrimaryResponsibleUserID uint64  `json:"primary_responsible_user_id" binding:"required"`
		AccountableUserID        uint64  `json:"accountable_user_id" binding:"required"`
		BackupResponsibleUserID  *uint64 `json:"backup_responsible_user_id"`
		SOPID                    *uint64 `json:"sop_id"`
		IsRecurring              bool    `json:"is_recurring"`
		RecurringSchedule        *string `json:"recurring_schedule"`
		DeadlineType             *string `json:"deadline_type"`
		DeadlineValue            *string `json:"deadline_value"`
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var schedule *models.RecurringSchedule
	if req.RecurringSchedule != nil {
		s := models.RecurringSchedule(*req.RecurringSchedule)
		schedule = &s
	}

	template, err := h.templateService.CreateTemplate(services.CreateTemplateInput{
		Title:                    req.Title,
		Description:              req.Description,
		PrimaryResponsibleUserID: req.PrimaryResponsibleUserID,
		AccountableUserID:        req.AccountableUserID,
		BackupResponsibleUserID:  req.BackupResponsibleUserID,
		SOPID:                    req.SOPID,
		IsRecurring:              req.IsRecurring,
		RecurringSchedule:        schedule,
		DeadlineType:             req.DeadlineType,
		DeadlineValue:            req.DeadlineValue,
		CreatedByID:              userID,
	})
	if err != nil {
		respondTemplateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTemplateDTO(*template))
}

// ListTemplates returns the templates visible to the current user.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	includeInactive := c.Query("include_inactive") == "true"

	templates, total, err := h.templateService.ListTemplates(services.ListTemplatesInput{
		UserID:          userID,
		Roles:           middleware.GetUserRoles(c),
		IncludeInactive: includeInactive,
		Page:            params.Page,
		PageSize:        params.PageSize,
	})
	if err != nil {
		respondTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTemplateListResponse(templates, params.Page, params.PageSize, total))
}

// GetTemplate returns one template. Access is enforced by the
// RequireTemplateAccess middleware, which places the template in context.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	template, ok := middleware.GetTemplate(c)
	if !ok {
		apierrors.InternalError(c, "Template not loaded")
		return
	}

	c.JSON(http.StatusOK, dto.ToTemplateDTO(template))
}

// UpdateTemplate applies a partial update to a template.
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	template, ok := middleware.GetTemplate(c)
	if !ok {
		apierrors.InternalError(c, "Template not loaded")
		return
	}

	type UpdateTemplateRequest struct {
		Title                    *string `json:"title"`
		Description              *string `json:"description"`
		PrimaryResponsibleUserID *uint64 `json:"primary_responsible_user_id"`
		AccountableUserID        *uint64 `json:"accountable_user_id"`
		BackupResponsibleUserID  *uint64 `json:"backup_responsible_user_id"`
		ClearBackupResponsible   bool    `json:"clear_backup_responsible"`
		SOPID                    *uint64 `json:"sop_id"`
		ClearSOP                 bool    `json:"clear_sop"`
		DeadlineType             *string `json:"deadline_type"`
		DeadlineValue            *string `json:"deadline_value"`
	}

	var req UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.templateService.UpdateTemplate(template.ID, services.UpdateTemplateInput{
		Title:                    req.Title,
		Description:              req.Description,
		PrimaryResponsibleUserID: req.PrimaryResponsibleUserID,
		AccountableUserID:        req.AccountableUserID,
		BackupResponsibleUserID:  req.BackupResponsibleUserID,
		ClearBackupResponsible:   req.ClearBackupResponsible,
		SOPID:                    req.SOPID,
		ClearSOP:                 req.ClearSOP,
		DeadlineType:             req.DeadlineType,
		DeadlineValue:            req.DeadlineValue,
	})
	if err != nil {
		respondTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTemplateDTO(*updated))
}

// DeactivateTemplate soft-deletes a template.
func (h *TemplateHandler) DeactivateTemplate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	template, ok := middleware.GetTemplate(c)
	if !ok {
		apierrors.InternalError(c, "Template not loaded")
		return
	}

	if err := h.templateService.Deactivate(template.ID, userID, middleware.GetUserRoles(c)); err != nil {
		respondTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deactivated"})
}

func respondTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTemplateNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTemplateTitleRequired),
		errors.Is(err, services.ErrTemplateTitleTooShort),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrInvalidSchedule),
		errors.Is(err, services.ErrScheduleRequired),
		errors.Is(err, services.ErrInvalidDeadlineSpec),
		errors.Is(err, services.ErrSOPReferenceNotFound):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotTemplateOwner),
		errors.Is(err, services.ErrTemplateAccessDenied):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
