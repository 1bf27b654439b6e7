package dto

import (
	"time"

	"github.com/kfujiw/raci-task-tracker/internal/models"
)

// InstanceDTO represents a task instance in API responses
type InstanceDTO struct {
	ID                 uint64                `json:"id"`
	TemplateID         uint64                `json:"template_id"`
	InstanceIdentifier string                `json:"instance_identifier"`
	Status             models.InstanceStatus `json:"status"`
	DueDate            *time.Time            `json:"due_date"`
	Version            uint64                `json:"version"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	Template           *TemplateDTO          `json:"template,omitempty"`
	StatusLogs         []StatusLogDTO        `json:"status_logs,omitempty"`
	Outcome            *OutcomeDTO           `json:"outcome,omitempty"`
}

// StatusLogDTO represents one audit entry in API responses
type StatusLogDTO struct {
	ID         uint64                 `json:"id"`
	OldStatus  *models.InstanceStatus `json:"old_status"`
	NewStatus  models.InstanceStatus  `json:"new_status"`
	UserID     *uint64                `json:"user_id"`
	User       *UserDTO               `json:"user,omitempty"`
	Comment    *string                `json:"comment"`
	ChangeTime time.Time              `json:"change_time"`
}

// OutcomeDTO represents the terminal outcome record in API responses
type OutcomeDTO struct {
	ID                uint64                `json:"id"`
	Outcome           models.InstanceStatus `json:"outcome"`
	CompletedByUserID *uint64               `json:"completed_by_user_id"`
	Comment           *string               `json:"comment"`
	CompletionTime    time.Time             `json:"completion_time"`
	LoggedAt          time.Time             `json:"logged_at"`
}

// InstanceListResponse represents a paginated list of instances
type InstanceListResponse struct {
	Instances  []InstanceDTO `json:"instances"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
	TotalPages int           `json:"total_pages"`
}

// ToInstanceDTO converts a TaskInstance model to InstanceDTO
func ToInstanceDTO(instance models.TaskInstance) InstanceDTO {
	dto := InstanceDTO{
		ID:                 instance.ID,
		TemplateID:         instance.TemplateID,
		InstanceIdentifier: instance.InstanceIdentifier,
		Status:             instance.Status,
		DueDate:            instance.DueDate,
		Version:            instance.Version,
		CreatedAt:          instance.CreatedAt,
		UpdatedAt:          instance.UpdatedAt,
	}

	if instance.Template.ID != 0 {
		template := ToTemplateDTO(instance.Template)
		dto.Template = &template
	}
	if len(instance.StatusLogs) > 0 {
		dto.StatusLogs = make([]StatusLogDTO, len(instance.StatusLogs))
		for i, entry := range instance.StatusLogs {
			dto.StatusLogs[i] = ToStatusLogDTO(entry)
		}
	}
	if instance.Outcome != nil && instance.Outcome.ID != 0 {
		outcome := ToOutcomeDTO(*instance.Outcome)
		dto.Outcome = &outcome
	}

	return dto
}

// ToStatusLogDTO converts a StatusLogEntry model to StatusLogDTO
func ToStatusLogDTO(entry models.StatusLogEntry) StatusLogDTO {
	dto := StatusLogDTO{
		ID:         entry.ID,
		OldStatus:  entry.OldStatus,
		NewStatus:  entry.NewStatus,
		UserID:     entry.UserID,
		Comment:    entry.Comment,
		ChangeTime: entry.ChangeTime,
	}
	if entry.User != nil && entry.User.ID != 0 {
		user := ToUserDTO(*entry.User)
		dto.User = &user
	}
	return dto
}

// ToOutcomeDTO converts an OutcomeLogEntry model to OutcomeDTO
func ToOutcomeDTO(outcome models.OutcomeLogEntry) OutcomeDTO {
	return OutcomeDTO{
		ID:                outcome.ID,
		Outcome:           outcome.Outcome,
		CompletedByUserID: outcome.CompletedByUserID,
		Comment:           outcome.Comment,
		CompletionTime:    outcome.CompletionTime,
		LoggedAt:          outcome.LoggedAt,
	}
}

// ToInstanceListResponse converts a slice of instances to InstanceListResponse
func ToInstanceListResponse(instances []models.TaskInstance, page, pageSize int, totalCount int64) InstanceListResponse {
	items := make([]InstanceDTO, len(instances))
	for i, instance := range instances {
		items[i] = ToInstanceDTO(instance)
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalCount) / pageSize
		if int(totalCount)%pageSize > 0 {
			totalPages++
		}
	}

	return InstanceListResponse{
		Instances:  items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
