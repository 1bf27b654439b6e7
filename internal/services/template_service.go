package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kfujiw/raci-task-tracker/internal/duedate"
	"github.com/kfujiw/raci-task-tracker/internal/models"
	"github.com/kfujiw/raci-task-tracker/internal/repository"
	"github.com/kfujiw/raci-task-tracker/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound      = errors.New("task template not found")
	ErrTemplateInactive      = errors.New("task template is deactivated")
	ErrTemplateTitleRequired = errors.New("title is required")
	ErrTemplateTitleTooShort = errors.New("title must be at least 3 characters")
	ErrInvalidAssignee       = errors.New("one or more assigned users do not exist")
	ErrInvalidSchedule       = errors.New("invalid recurrence pattern")
	ErrScheduleRequired      = errors.New("recurrence pattern is required for recurring templates")
	ErrInvalidDeadlineSpec   = errors.New("invalid deadline specification")
	ErrNotTemplateOwner      = errors.New("only the template creator or an admin can perform this action")
	ErrSOPReferenceNotFound  = errors.New("referenced SOP does not exist")
	ErrTemplateAccessDenied  = errors.New("user does not have access to this template")
)

// TemplateService handles task template business logic
type TemplateService struct {
	templateRepo repository.TemplateRepository
	instanceRepo repository.InstanceRepository
	userRepo     repository.UserRepository
	sopRepo      repository.SOPRepository
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(
	templateRepo repository.TemplateRepository,
	instanceRepo repository.InstanceRepository,
	userRepo repository.UserRepository,
	sopRepo repository.SOPRepository,
) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		instanceRepo: instanceRepo,
		userRepo:     userRepo,
		sopRepo:      sopRepo,
	}
}

// CreateTemplateInput represents input for creating a task template
type CreateTemplateInput struct {
	Title                    string
	Description              string
	PrimaryResponsibleUserID uint64
	AccountableUserID        uint64
	BackupResponsibleUserID  *uint64
	SOPID                    *uint64
	IsRecurring              bool
	RecurringSchedule        *models.RecurringSchedule
	DeadlineType             *string
	DeadlineValue            *string
	CreatedByID              uint64
}

// CreateTemplate validates and creates a template. Non-recurring templates
// get their single instance materialized in the same transaction; recurring
// ones wait for the recurrence sweep.
func (s *TemplateService) CreateTemplate(input CreateTemplateInput) (*models.TaskTemplate, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTemplateTitleRequired
	}
	if len(title) < 3 {
		return nil, ErrTemplateTitleTooShort
	}

	if err := s.validateAssignees(input.PrimaryResponsibleUserID, input.AccountableUserID, input.BackupResponsibleUserID); err != nil {
		return nil, err
	}

	if input.IsRecurring {
		if input.RecurringSchedule == nil {
			return nil, ErrScheduleRequired
		}
		if !input.RecurringSchedule.IsValid() {
			return nil, ErrInvalidSchedule
		}
	} else {
		input.RecurringSchedule = nil
	}

	if err := validateDeadlineSpec(input.DeadlineType, input.DeadlineValue); err != nil {
		return nil, err
	}

	if input.SOPID != nil {
		if _, err := s.sopRepo.FindByID(*input.SOPID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSOPReferenceNotFound
			}
			return nil, fmt.Errorf("failed to verify SOP: %w", err)
		}
	}

	template := &models.TaskTemplate{
		Title:                    title,
		Description:              input.Description,
		ProcessIdentifier:        utils.GenerateProcessIdentifier(),
		PrimaryResponsibleUserID: input.PrimaryResponsibleUserID,
		AccountableUserID:        input.AccountableUserID,
		BackupResponsibleUserID:  input.BackupResponsibleUserID,
		SOPID:                    input.SOPID,
		IsRecurring:              input.IsRecurring,
		RecurringSchedule:        input.RecurringSchedule,
		DeadlineType:             input.DeadlineType,
		DeadlineValue:            input.DeadlineValue,
		IsActive:                 true,
		CreatedByID:              input.CreatedByID,
	}

	if input.IsRecurring {
		if err := s.templateRepo.Create(template); err != nil {
			return nil, fmt.Errorf("failed to create template: %w", err)
		}
	} else {
		instance := &models.TaskInstance{
			InstanceIdentifier: utils.GenerateInstanceIdentifier(),
			Status:             models.StatusAssigned,
			DueDate:            duedate.Compute(input.DeadlineType, input.DeadlineValue, time.Now()),
		}
		if err := s.templateRepo.CreateWithInitialInstance(template, instance); err != nil {
			return nil, fmt.Errorf("failed to create template: %w", err)
		}
	}

	return s.templateRepo.FindByID(template.ID,
		"PrimaryResponsible", "Accountable", "BackupResponsible", "SOP", "CreatedBy")
}

// UpdateTemplateInput represents input for updating a task template
type UpdateTemplateInput struct {
	Title                    *string
	Description              *string
	PrimaryResponsibleUserID *uint64
	AccountableUserID        *uint64
	BackupResponsibleUserID  *uint64
	ClearBackupResponsible   bool
	SOPID                    *uint64
	ClearSOP                 bool
	DeadlineType             *string
	DeadlineValue            *string
}

// UpdateTemplate applies a partial update to a template
func (s *TemplateService) UpdateTemplate(templateID uint64, input UpdateTemplateInput) (*models.TaskTemplate, error) {
	template, err := s.templateRepo.FindByID(templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to find template: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if len(title) < 3 {
			return nil, ErrTemplateTitleTooShort
		}
		template.Title = title
	}
	if input.Description != nil {
		template.Description = *input.Description
	}
	if input.PrimaryResponsibleUserID != nil {
		template.PrimaryResponsibleUserID = *input.PrimaryResponsibleUserID
	}
	if input.AccountableUserID != nil {
		template.AccountableUserID = *input.AccountableUserID
	}
	if input.ClearBackupResponsible {
		template.BackupResponsibleUserID = nil
	} else if input.BackupResponsibleUserID != nil {
		template.BackupResponsibleUserID = input.BackupResponsibleUserID
	}

	if err := s.validateAssignees(template.PrimaryResponsibleUserID, template.AccountableUserID, template.BackupResponsibleUserID); err != nil {
		return nil, err
	}

	if input.ClearSOP {
		template.SOPID = nil
	} else if input.SOPID != nil {
		if _, err := s.sopRepo.FindByID(*input.SOPID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSOPReferenceNotFound
			}
			return nil, fmt.Errorf("failed to verify SOP: %w", err)
		}
		template.SOPID = input.SOPID
	}

	if input.DeadlineType != nil {
		template.DeadlineType = input.DeadlineType
	}
	if input.DeadlineValue != nil {
		template.DeadlineValue = input.DeadlineValue
	}
	if err := validateDeadlineSpec(template.DeadlineType, template.DeadlineValue); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Update(template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	return s.templateRepo.FindByID(template.ID,
		"PrimaryResponsible", "Accountable", "BackupResponsible", "SOP", "CreatedBy")
}

// GetTemplate returns a template with related data
func (s *TemplateService) GetTemplate(templateID uint64) (*models.TaskTemplate, error) {
	template, err := s.templateRepo.FindByID(templateID,
		"PrimaryResponsible", "Accountable", "BackupResponsible", "SOP", "CreatedBy")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to find template: %w", err)
	}
	return template, nil
}

// ListTemplatesInput represents filters for listing templates
type ListTemplatesInput struct {
	UserID          uint64
	Roles           []models.RoleName
	IncludeInactive bool
	Page            int
	PageSize        int
}

// ListTemplates returns the templates visible to a user by role:
// admins see everything, managers see their team's work, team members see
// templates whose RACI assignment names them.
func (s *TemplateService) ListTemplates(input ListTemplatesInput) ([]models.TaskTemplate, int64, error) {
	filter := repository.TemplateFilter{
		IncludeInactive: input.IncludeInactive && models.HasAnyRole(input.Roles, models.RoleAdmin),
		Page:            input.Page,
		PageSize:        input.PageSize,
	}

	if err := s.applyVisibility(input.UserID, input.Roles, &filter); err != nil {
		return nil, 0, err
	}

	templates, total, err := s.templateRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}

	return templates, total, nil
}

// Deactivate soft-deletes a template. Only the creator or an admin may do so.
func (s *TemplateService) Deactivate(templateID, actorID uint64, roles []models.RoleName) error {
	template, err := s.templateRepo.FindByID(templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to find template: %w", err)
	}

	if template.CreatedByID != actorID && !models.HasAnyRole(roles, models.RoleAdmin) {
		return ErrNotTemplateOwner
	}

	if err := s.templateRepo.Deactivate(templateID); err != nil {
		return fmt.Errorf("failed to deactivate template: %w", err)
	}

	return nil
}

// applyVisibility narrows a template filter to what the user may see.
func (s *TemplateService) applyVisibility(userID uint64, roles []models.RoleName, filter *repository.TemplateFilter) error {
	if models.HasAnyRole(roles, models.RoleAdmin) {
		return nil
	}

	if models.HasAnyRole(roles, models.RoleManager) {
		user, err := s.userRepo.FindByID(userID)
		if err != nil {
			return fmt.Errorf("failed to resolve manager team: %w", err)
		}
		if user.TeamID != nil {
			filter.TeamID = user.TeamID
			return nil
		}
		// Manager without a team falls back to participation scope
	}

	uid := userID
	filter.ParticipantUserID = &uid
	return nil
}

func (s *TemplateService) validateAssignees(primary, accountable uint64, backup *uint64) error {
	ids := []uint64{primary, accountable}
	if backup != nil {
		ids = append(ids, *backup)
	}
	unique := uniqueUint64(ids)

	count, err := s.userRepo.CountByIDs(unique)
	if err != nil {
		return fmt.Errorf("failed to verify assignees: %w", err)
	}
	if int(count) != len(unique) {
		return ErrInvalidAssignee
	}
	return nil
}

// validateDeadlineSpec rejects a spec the due-date policy could not evaluate.
// An absent spec is fine (instances simply get no due date).
func validateDeadlineSpec(deadlineType, deadlineValue *string) error {
	if deadlineType == nil && deadlineValue == nil {
		return nil
	}
	if deadlineType == nil || deadlineValue == nil {
		return ErrInvalidDeadlineSpec
	}
	if *deadlineType == "" && *deadlineValue == "" {
		return nil
	}
	if duedate.Compute(deadlineType, deadlineValue, time.Now()) == nil {
		return ErrInvalidDeadlineSpec
	}
	return nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
