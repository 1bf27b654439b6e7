package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kfujiw/raci-task-tracker/internal/dto"
	apierrors "github.com/kfujiw/raci-task-tracker/internal/errors"
	"github.com/kfujiw/raci-task-tracker/internal/services"
)

// SOPHandler coordinates SOP-related HTTP handlers.
type SOPHandler struct {
	sopService *services.SOPService
}

// NewSOPHandler creates a new SOPHandler.
func NewSOPHandler(sopService *services.SOPService) *SOPHandler {
	return &SOPHandler{sopService: sopService}
}

// CreateSOP creates a new SOP.
func (h *SOPHandler) CreateSOP(c *gin.Context) {
	type CreateSOPRequest struct {
		Title string `json:"title" binding:"required"`
		Link  string `json:"link" binding:"required"`
	}

	var req CreateSOPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	sop, err := h.sopService.CreateSOP(services.CreateSOPInput{
		Title: req.Title,
		Link:  req.Link,
	})
	if err != nil {
		respondSOPError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSOPDTO(*sop))
}

// ListSOPs returns all SOPs.
func (h *SOPHandler) ListSOPs(c *gin.Context) {
	sops, err := h.sopService.ListSOPs()
	if err != nil {
		apierrors.InternalError(c, "Failed to list SOPs")
		return
	}

	sopDTOs := make([]dto.SOPDTO, len(sops))
	for i, sop := range sops {
		sopDTOs[i] = dto.ToSOPDTO(sop)
	}

	c.JSON(http.StatusOK, gin.H{"sops": sopDTOs})
}

// GetSOP returns one SOP.
func (h *SOPHandler) GetSOP(c *gin.Context) {
	sopID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid SOP ID")
		return
	}

	sop, err := h.sopService.GetSOP(sopID)
	if err != nil {
		respondSOPError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSOPDTO(*sop))
}

// UpdateSOP updates an SOP.
func (h *SOPHandler) UpdateSOP(c *gin.Context) {
	sopID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid SOP ID")
		return
	}

	type UpdateSOPRequest struct {
		Title *string `json:"title"`
		Link  *string `json:"link"`
	}

	var req UpdateSOPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	sop, err := h.sopService.UpdateSOP(sopID, services.UpdateSOPInput{
		Title: req.Title,
		Link:  req.Link,
	})
	if err != nil {
		respondSOPError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSOPDTO(*sop))
}

func respondSOPError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSOPNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrSOPTitleEmpty), errors.Is(err, services.ErrSOPLinkEmpty):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
