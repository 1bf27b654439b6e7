package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/kfujiw/raci-task-tracker/internal/duedate"
	"github.com/kfujiw/raci-task-tracker/internal/models"
	"github.com/kfujiw/raci-task-tracker/internal/notify"
	"github.com/kfujiw/raci-task-tracker/internal/repository"
	"github.com/kfujiw/raci-task-tracker/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInstanceNotFound  = errors.New("task instance not found")
	ErrUnknownStatus     = errors.New("unknown status")
	ErrNoOpTransition    = errors.New("instance already has the requested status")
	ErrIllegalTransition = errors.New("status transition is not allowed")
	ErrInstanceConflict  = errors.New("instance was modified concurrently, please retry")
)

// InstanceService handles task instance lifecycle logic: materialization,
// the validated status-transition path, and notification projection.
type InstanceService struct {
	instanceRepo repository.InstanceRepository
	templateRepo repository.TemplateRepository
	userRepo     repository.UserRepository
}

// NewInstanceService creates a new InstanceService
func NewInstanceService(
	instanceRepo repository.InstanceRepository,
	templateRepo repository.TemplateRepository,
	userRepo repository.UserRepository,
) *InstanceService {
	return &InstanceService{
		instanceRepo: instanceRepo,
		templateRepo: templateRepo,
		userRepo:     userRepo,
	}
}

// CreateInstance materializes a new instance from an active template.
// The initial status is always assigned; the due date comes from the
// template's deadline specification evaluated at creation time.
func (s *InstanceService) CreateInstance(templateID, actorID uint64) (*models.TaskInstance, error) {
	template, err := s.templateRepo.FindByID(templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to find template: %w", err)
	}
	if !template.IsActive {
		return nil, ErrTemplateInactive
	}

	instance := &models.TaskInstance{
		TemplateID:         template.ID,
		InstanceIdentifier: utils.GenerateInstanceIdentifier(),
		Status:             models.StatusAssigned,
		DueDate:            duedate.Compute(template.DeadlineType, template.DeadlineValue, time.Now()),
	}

	if err := s.instanceRepo.Create(instance, &actorID); err != nil {
		return nil, fmt.Errorf("failed to create instance: %w", err)
	}

	return s.instanceRepo.FindByID(instance.ID, "Template", "StatusLogs")
}

// ChangeStatusInput represents one requested status transition
type ChangeStatusInput struct {
	InstanceID uint64
	Requested  models.InstanceStatus
	ActorID    uint64
	Comment    *string
}

// ChangeStatus validates and applies a status transition. The read of the
// current status and the write share an optimistic version token, so a
// concurrent transition surfaces as ErrInstanceConflict instead of a lost
// update or an inconsistent log chain.
func (s *InstanceService) ChangeStatus(input ChangeStatusInput) (*models.TaskInstance, error) {
	if !input.Requested.IsValid() {
		return nil, ErrUnknownStatus
	}

	instance, err := s.instanceRepo.FindByID(input.InstanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to find instance: %w", err)
	}

	if input.Requested == instance.Status {
		return nil, ErrNoOpTransition
	}
	if !models.CanTransition(instance.Status, input.Requested) {
		return nil, ErrIllegalTransition
	}

	actorID := input.ActorID
	_, err = s.instanceRepo.ChangeStatus(repository.ChangeStatusInput{
		InstanceID:      instance.ID,
		ExpectedVersion: instance.Version,
		OldStatus:       instance.Status,
		NewStatus:       input.Requested,
		ActorID:         &actorID,
		Comment:         input.Comment,
		At:              time.Now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrInstanceConflict
		}
		return nil, fmt.Errorf("failed to change status: %w", err)
	}

	return s.instanceRepo.FindByID(instance.ID, "Template", "StatusLogs")
}

// GetInstance returns an instance with its template and status history
func (s *InstanceService) GetInstance(instanceID uint64) (*models.TaskInstance, error) {
	instance, err := s.instanceRepo.FindByID(instanceID,
		"Template", "Template.PrimaryResponsible", "Template.Accountable",
		"Template.BackupResponsible", "Template.SOP", "StatusLogs", "Outcome")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to find instance: %w", err)
	}
	return instance, nil
}

// ListInstancesInput represents filters for listing instances
type ListInstancesInput struct {
	UserID     uint64
	Roles      []models.RoleName
	TemplateID *uint64
	Status     *models.InstanceStatus
	DueBefore  *time.Time
	DueAfter   *time.Time
	Page       int
	PageSize   int
}

// ListInstances returns the instances visible to a user by role
func (s *InstanceService) ListInstances(input ListInstancesInput) ([]models.TaskInstance, int64, error) {
	filter := repository.InstanceFilter{
		TemplateID: input.TemplateID,
		Status:     input.Status,
		DueBefore:  input.DueBefore,
		DueAfter:   input.DueAfter,
		Page:       input.Page,
		PageSize:   input.PageSize,
	}

	if err := s.applyVisibility(input.UserID, input.Roles, &filter); err != nil {
		return nil, 0, err
	}

	instances, total, err := s.instanceRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list instances: %w", err)
	}

	return instances, total, nil
}

// ListStatusLogs returns an instance's audit trail, newest first
func (s *InstanceService) ListStatusLogs(instanceID uint64) ([]models.StatusLogEntry, error) {
	if _, err := s.instanceRepo.FindByID(instanceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to find instance: %w", err)
	}

	logs, err := s.instanceRepo.ListStatusLogs(instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status logs: %w", err)
	}
	return logs, nil
}

// GetOutcome returns the terminal outcome of an instance, or nil if it is
// still open
func (s *InstanceService) GetOutcome(instanceID uint64) (*models.OutcomeLogEntry, error) {
	outcome, err := s.instanceRepo.FindOutcome(instanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find outcome: %w", err)
	}
	return outcome, nil
}

// DeriveNotifications projects the user's visible instances into due-soon
// and overdue alerts as of now
func (s *InstanceService) DeriveNotifications(userID uint64, roles []models.RoleName, now time.Time) ([]notify.Notification, error) {
	filter := repository.InstanceFilter{}
	if err := s.applyVisibility(userID, roles, &filter); err != nil {
		return nil, err
	}

	instances, _, err := s.instanceRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}

	return notify.Derive(instances, now), nil
}

// RunRecurrenceSweep materializes the next instance for every active
// recurring template that is due for one: no instance yet, latest instance
// closed, or a full recurrence period elapsed since the latest was created.
// Returns the number of instances created. Safe to re-run; a sweep that
// created an instance leaves nothing else to create until the next period.
func (s *InstanceService) RunRecurrenceSweep(now time.Time) (int, error) {
	templates, err := s.templateRepo.ListActiveRecurring()
	if err != nil {
		return 0, fmt.Errorf("failed to list recurring templates: %w", err)
	}

	created := 0
	for i := range templates {
		template := &templates[i]

		due, err := s.nextInstanceDue(template, now)
		if err != nil {
			return created, err
		}
		if !due {
			continue
		}

		instance := &models.TaskInstance{
			TemplateID:         template.ID,
			InstanceIdentifier: utils.GenerateInstanceIdentifier(),
			Status:             models.StatusAssigned,
			DueDate:            duedate.Compute(template.DeadlineType, template.DeadlineValue, now),
		}
		if err := s.instanceRepo.Create(instance, nil); err != nil {
			return created, fmt.Errorf("failed to materialize instance for template %d: %w", template.ID, err)
		}
		created++
	}

	return created, nil
}

func (s *InstanceService) nextInstanceDue(template *models.TaskTemplate, now time.Time) (bool, error) {
	latest, err := s.instanceRepo.LatestForTemplate(template.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("failed to find latest instance: %w", err)
	}

	if latest.Status.IsTerminal() {
		return true, nil
	}

	if template.RecurringSchedule == nil {
		return false, nil
	}

	var nextAt time.Time
	switch *template.RecurringSchedule {
	case models.ScheduleDaily:
		nextAt = latest.CreatedAt.AddDate(0, 0, 1)
	case models.ScheduleWeekly:
		nextAt = latest.CreatedAt.AddDate(0, 0, 7)
	case models.ScheduleMonthly:
		nextAt = latest.CreatedAt.AddDate(0, 1, 0)
	default:
		return false, nil
	}

	return !now.Before(nextAt), nil
}

// applyVisibility narrows an instance filter to what the user may see.
func (s *InstanceService) applyVisibility(userID uint64, roles []models.RoleName, filter *repository.InstanceFilter) error {
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
	}

	uid := userID
	filter.ParticipantUserID = &uid
	return nil
}
