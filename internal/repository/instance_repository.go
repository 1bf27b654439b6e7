package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/kfujiw/raci-task-tracker/internal/database"
	"github.com/kfujiw/raci-task-tracker/internal/models"
	"gorm.io/gorm"
)

// GormInstanceRepository is a GORM implementation of InstanceRepository
type GormInstanceRepository struct {
	db *gorm.DB
}

var (
	// ErrVersionConflict is returned when the optimistic version check fails:
	// another transition landed between the caller's read and this write.
	ErrVersionConflict = errors.New("instance repository: version conflict")
	// ErrUpdateInstance is returned when the status update fails inside the transition transaction.
	ErrUpdateInstance = errors.New("instance repository: update status failed")
	// ErrCreateStatusLog is returned when the status log insert fails inside the transition transaction.
	ErrCreateStatusLog = errors.New("instance repository: create status log failed")
	// ErrCreateOutcomeLog is returned when the outcome log insert fails inside the transition transaction.
	ErrCreateOutcomeLog = errors.New("instance repository: create outcome log failed")
)

// NewInstanceRepository creates a new InstanceRepository
func NewInstanceRepository(db *gorm.DB) InstanceRepository {
	return &GormInstanceRepository{db: db}
}

// Create creates the instance and its creation log entry atomically.
// The creation entry carries a nil old status.
func (r *GormInstanceRepository) Create(instance *models.TaskInstance, actorID *uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(instance).Error; err != nil {
			return err
		}

		entry := models.StatusLogEntry{
			InstanceID: instance.ID,
			OldStatus:  nil,
			NewStatus:  instance.Status,
			UserID:     actorID,
			ChangeTime: time.Now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateStatusLog, err)
		}

		return nil
	})
}

// FindByID finds an instance by ID with optional preloading
func (r *GormInstanceRepository) FindByID(id uint64, preload ...string) (*models.TaskInstance, error) {
	var instance models.TaskInstance
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&instance, id).Error; err != nil {
		return nil, err
	}

	return &instance, nil
}

// List retrieves instances with filtering and pagination
func (r *GormInstanceRepository) List(filter InstanceFilter) ([]models.TaskInstance, int64, error) {
	var instances []models.TaskInstance

	query := r.db.Model(&models.TaskInstance{}).
		Joins("JOIN task_templates ON task_templates.id = task_instances.template_id")

	if filter.TemplateID != nil {
		query = query.Where("task_instances.template_id = ?", *filter.TemplateID)
	}
	if filter.Status != nil {
		query = query.Where("task_instances.status = ?", *filter.Status)
	}
	if filter.ParticipantUserID != nil {
		uid := *filter.ParticipantUserID
		query = query.Where(
			"task_templates.primary_responsible_user_id = ? OR task_templates.accountable_user_id = ? OR task_templates.backup_responsible_user_id = ?",
			uid, uid, uid,
		)
	}
	if filter.TeamID != nil {
		teamSubQuery := r.db.Model(&models.User{}).
			Select("1").
			Where("users.team_id = ?", *filter.TeamID).
			Where("users.id IN (task_templates.primary_responsible_user_id, task_templates.accountable_user_id) OR users.id = task_templates.backup_responsible_user_id")
		query = query.Where("EXISTS (?)", teamSubQuery)
	}
	if filter.DueBefore != nil {
		query = query.Where("task_instances.due_date < ?", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		query = query.Where("task_instances.due_date >= ?", *filter.DueAfter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("task_instances.created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Template").Find(&instances).Error; err != nil {
		return nil, 0, err
	}

	return instances, total, nil
}

// LatestForTemplate returns the most recently created instance of a template
func (r *GormInstanceRepository) LatestForTemplate(templateID uint64) (*models.TaskInstance, error) {
	var instance models.TaskInstance
	err := r.db.Where("template_id = ?", templateID).
		Order("created_at DESC").
		First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// ChangeStatus applies one status transition as a single transaction:
// a compare-and-swap on (id, version), the status log append, and the
// conditional outcome log append. Either all three land or none do.
func (r *GormInstanceRepository) ChangeStatus(input ChangeStatusInput) (*models.StatusLogEntry, error) {
	var entry models.StatusLogEntry

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.TaskInstance{}).
			Where("id = ? AND version = ?", input.InstanceID, input.ExpectedVersion).
			Updates(map[string]interface{}{
				"status":  input.NewStatus,
				"version": input.ExpectedVersion + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrUpdateInstance, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}

		oldStatus := input.OldStatus
		entry = models.StatusLogEntry{
			InstanceID: input.InstanceID,
			OldStatus:  &oldStatus,
			NewStatus:  input.NewStatus,
			UserID:     input.ActorID,
			Comment:    input.Comment,
			ChangeTime: input.At,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateStatusLog, err)
		}

		if input.NewStatus.IsTerminal() {
			outcome := models.OutcomeLogEntry{
				InstanceID:        input.InstanceID,
				Outcome:           input.NewStatus,
				CompletedByUserID: input.ActorID,
				Comment:           input.Comment,
				CompletionTime:    input.At,
			}
			if err := tx.Create(&outcome).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrCreateOutcomeLog, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// ListStatusLogs returns an instance's status log, newest first
func (r *GormInstanceRepository) ListStatusLogs(instanceID uint64) ([]models.StatusLogEntry, error) {
	var entries []models.StatusLogEntry
	err := r.db.Preload("User").
		Where("instance_id = ?", instanceID).
		Order("change_time DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// RecentStatusLogs returns the newest log entries across the given instances
func (r *GormInstanceRepository) RecentStatusLogs(instanceIDs []uint64, limit int) ([]models.StatusLogEntry, error) {
	if len(instanceIDs) == 0 {
		return []models.StatusLogEntry{}, nil
	}

	var entries []models.StatusLogEntry
	err := r.db.Preload("User").
		Where("instance_id IN ?", instanceIDs).
		Order("change_time DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindOutcome returns the outcome log entry of an instance, if any
func (r *GormInstanceRepository) FindOutcome(instanceID uint64) (*models.OutcomeLogEntry, error) {
	var outcome models.OutcomeLogEntry
	if err := r.db.Where("instance_id = ?", instanceID).First(&outcome).Error; err != nil {
		return nil, err
	}
	return &outcome, nil
}
