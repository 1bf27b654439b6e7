package dto

import (
	"time"

	"github.com/kfujiw/raci-task-tracker/internal/models"
)

// TemplateDTO represents a task template in API responses
type TemplateDTO struct {
	ID                 uint64                    `json:"id"`
	Title              string                    `json:"title"`
	Description        string                    `json:"description"`
	ProcessIdentifier  string                    `json:"process_identifier"`
	PrimaryResponsible *UserDTO                  `json:"primary_responsible,omitempty"`
	Accountable        *UserDTO                  `json:"accountable,omitempty"`
	BackupResponsible  *UserDTO                  `json:"backup_responsible,omitempty"`
	SOP                *SOPDTO                   `json:"sop,omitempty"`
	IsRecurring        bool                      `json:"is_recurring"`
	RecurringSchedule  *models.RecurringSchedule `json:"recurring_schedule,omitempty"`
	DeadlineType       *string                   `json:"deadline_type,omitempty"`
	DeadlineValue      *string                   `json:"deadline_value,omitempty"`
	IsActive           bool                      `json:"is_active"`
	CreatedByID        uint64                    `json:"created_by_id"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

// TemplateListResponse represents a paginated list of templates
type TemplateListResponse struct {
	Templates  []TemplateDTO `json:"templates"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
	TotalPages int           `json:"total_pages"`
}

// ToTemplateDTO converts a TaskTemplate model to TemplateDTO
func ToTemplateDTO(template models.TaskTemplate) TemplateDTO {
	dto := TemplateDTO{
		ID:                template.ID,
		Title:             template.Title,
		Description:       template.Description,
		ProcessIdentifier: template.ProcessIdentifier,
		IsRecurring:       template.IsRecurring,
		RecurringSchedule: template.RecurringSchedule,
		DeadlineType:      template.DeadlineType,
		DeadlineValue:     template.DeadlineValue,
		IsActive:          template.IsActive,
		CreatedByID:       template.CreatedByID,
		CreatedAt:         template.CreatedAt,
		UpdatedAt:         template.UpdatedAt,
	}

	if template.PrimaryResponsible.ID != 0 {
		user := ToUserDTO(template.PrimaryResponsible)
		dto.PrimaryResponsible = &user
	}
	if template.Accountable.ID != 0 {
		user := ToUserDTO(template.Accountable)
		dto.Accountable = &user
	}
	if template.BackupResponsible != nil && template.BackupResponsible.ID != 0 {
		user := ToUserDTO(*template.BackupResponsible)
		dto.BackupResponsible = &user
	}
	if template.SOP != nil && template.SOP.ID != 0 {
		sop := ToSOPDTO(*template.SOP)
		dto.SOP = &sop
	}

	return dto
}

// ToTemplateListResponse converts a slice of templates to TemplateListResponse
func ToTemplateListResponse(templates []models.TaskTemplate, page, pageSize int, totalCount int64) TemplateListResponse {
	items := make([]TemplateDTO, len(templates))
	for i, template := range templates {
		items[i] = ToTemplateDTO(template)
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalCount) / pageSize
		if int(totalCount)%pageSize > 0 {
			totalPages++
		}
	}

	return TemplateListResponse{
		Templates:  items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
