package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kfujiw/raci-task-tracker/internal/dto"
	apierrors "github.com/kfujiw/raci-task-tracker/internal/errors"
	"github.com/kfujiw/raci-task-tracker/internal/middleware"
	"github.com/kfujiw/raci-task-tracker/internal/models"
	"github.com/kfujiw/raci-task-tracker/internal/services"
	"github.com/kfujiw/raci-task-tracker/internal/utils"
)

// InstanceHandler coordinates task-instance HTTP handlers.
type InstanceHandler struct {
	instanceService *services.InstanceService
}

// NewInstanceHandler creates a new InstanceHandler.
func NewInstanceHandler(instanceService *services.InstanceService) *InstanceHandler {
	return &InstanceHandler{instanceService: instanceService}
}

// CreateInstance materializes a new instance from a template. Access to the
// template is enforced by RequireTemplateAccess.
func (h *InstanceHandler) CreateInstance(c *gin.Context) {
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

	instance, err := h.instanceService.CreateInstance(template.ID, userID)
	if err != nil {
		respondInstanceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInstanceDTO(*instance))
}

// ListInstances returns the instances visible to the current user.
func (h *InstanceHandler) ListInstances(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListInstancesInput{
		UserID:   userID,
		Roles:    middleware.GetUserRoles(c),
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	if raw := c.Query("status"); raw != "" {
		status := models.InstanceStatus(raw)
		if !status.IsValid() {
			apierrors.BadRequest(c, "Unknown status filter")
			return
		}
		input.Status = &status
	}
	if raw := c.Query("template_id"); raw != "" {
		templateID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid template_id filter")
			return
		}
		input.TemplateID = &templateID
	}
	if raw := c.Query("due_before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apierrors.BadRequest(c, "due_before must be RFC 3339")
			return
		}
		input.DueBefore = &t
	}
	if raw := c.Query("due_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apierrors.BadRequest(c, "due_after must be RFC 3339")
			return
		}
		input.DueAfter = &t
	}

	instances, total, err := h.instanceService.ListInstances(input)
	if err != nil {
		respondInstanceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInstanceListResponse(instances, params.Page, params.PageSize, total))
}

// GetInstance returns one instance with its template, status history and
// outcome. Access is enforced by RequireInstanceAccess.
func (h *InstanceHandler) GetInstance(c *gin.Context) {
	loaded, ok := middleware.GetInstance(c)
	if !ok {
		apierrors.InternalError(c, "Instance not loaded")
		return
	}

	instance, err := h.instanceService.GetInstance(loaded.ID)
	if err != nil {
		respondInstanceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInstanceDTO(*instance))
}

// ChangeStatus applies a status transition to an instance. Illegal or no-op
// transitions get 422, unknown statuses 400, concurrent modifications 409.
func (h *InstanceHandler) ChangeStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	loaded, ok := middleware.GetInstance(c)
	if !ok {
		apierrors.InternalError(c, "Instance not loaded")
		return
	}

	type ChangeStatusRequest struct {
		Status  string  `json:"status" binding:"required"`
		Comment *string `json:"comment"`
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	instance, err := h.instanceService.ChangeStatus(services.ChangeStatusInput{
		InstanceID: loaded.ID,
		Requested:  models.InstanceStatus(req.Status),
		ActorID:    userID,
		Comment:    req.Comment,
	})
	if err != nil {
		respondInstanceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInstanceDTO(*instance))
}

// ListStatusLogs returns an instance's audit trail, newest first.
func (h *InstanceHandler) ListStatusLogs(c *gin.Context) {
	loaded, ok := middleware.GetInstance(c)
	if !ok {
		apierrors.InternalError(c, "Instance not loaded")
		return
	}

	logs, err := h.instanceService.ListStatusLogs(loaded.ID)
	if err != nil {
		respondInstanceError(c, err)
		return
	}

	logDTOs := make([]dto.StatusLogDTO, len(logs))
	for i, entry := range logs {
		logDTOs[i] = dto.ToStatusLogDTO(entry)
	}

	c.JSON(http.StatusOK, gin.H{"status_logs": logDTOs})
}

// GetOutcome returns the terminal outcome of an instance, or 404 if the
// instance is still open.
func (h *InstanceHandler) GetOutcome(c *gin.Context) {
	loaded, ok := middleware.GetInstance(c)
	if !ok {
		apierrors.InternalError(c, "Instance not loaded")
		return
	}

	outcome, err := h.instanceService.GetOutcome(loaded.ID)
	if err != nil {
		respondInstanceError(c, err)
		return
	}
	if outcome == nil {
		apierrors.NotFound(c, "Instance has no outcome yet")
		return
	}

	c.JSON(http.StatusOK, dto.ToOutcomeDTO(*outcome))
}

func respondInstanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInstanceNotFound),
		errors.Is(err, services.ErrTemplateNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrUnknownStatus):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNoOpTransition),
		errors.Is(err, services.ErrIllegalTransition),
		errors.Is(err, services.ErrTemplateInactive):
		apierrors.UnprocessableEntity(c, err.Error())
	case errors.Is(err, services.ErrInstanceConflict):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
