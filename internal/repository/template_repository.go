package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/kfujiw/raci-task-tracker/internal/database"
	"github.com/kfujiw/raci-task-tracker/internal/models"
	"gorm.io/gorm"
)

// GormTemplateRepository is a GORM implementation of TemplateRepository
type GormTemplateRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateTemplate is returned when the template insert fails inside the creation transaction.
	ErrCreateTemplate = errors.New("template repository: create template failed")
	// ErrCreateInstance is returned when the initial instance insert fails inside the creation transaction.
	ErrCreateInstance = errors.New("template repository: create initial instance failed")
)

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &GormTemplateRepository{db: db}
}

// Create creates a new template
func (r *GormTemplateRepository) Create(template *models.TaskTemplate) error {
	return r.db.Create(template).Error
}

// CreateWithInitialInstance creates the template, its first instance, and the
// instance's creation log entry atomically.
func (r *GormTemplateRepository) CreateWithInitialInstance(template *models.TaskTemplate, instance *models.TaskInstance) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(template).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTemplate, err)
		}

		instance.TemplateID = template.ID
		if err := tx.Create(instance).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateInstance, err)
		}

		actorID := template.CreatedByID
		entry := models.StatusLogEntry{
			InstanceID: instance.ID,
			OldStatus:  nil,
			NewStatus:  instance.Status,
			UserID:     &actorID,
			ChangeTime: time.Now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateInstance, err)
		}

		return nil
	})
}

// FindByID finds a template by ID with optional preloading
func (r *GormTemplateRepository) FindByID(id uint64, preload ...string) (*models.TaskTemplate, error) {
	var template models.TaskTemplate
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&template, id).Error; err != nil {
		return nil, err
	}

	return &template, nil
}

// List retrieves templates with filtering and pagination
func (r *GormTemplateRepository) List(filter TemplateFilter) ([]models.TaskTemplate, int64, error) {
	var templates []models.TaskTemplate

	query := r.db.Model(&models.TaskTemplate{})

	if !filter.IncludeInactive {
		query = query.Where("task_templates.is_active = ?", true)
	}
	if filter.CreatedByID != nil {
		query = query.Where("task_templates.created_by_id = ?", *filter.CreatedByID)
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

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("task_templates.created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	err := listQuery.
		Preload("PrimaryResponsible").
		Preload("Accountable").
		Preload("BackupResponsible").
		Preload("SOP").
		Find(&templates).Error
	if err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

// Update updates a template
func (r *GormTemplateRepository) Update(template *models.TaskTemplate) error {
	return r.db.Save(template).Error
}

// Deactivate clears the active flag. The row itself is never deleted.
func (r *GormTemplateRepository) Deactivate(id uint64) error {
	result := r.db.Model(&models.TaskTemplate{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListActiveRecurring returns all active templates with a recurrence pattern
func (r *GormTemplateRepository) ListActiveRecurring() ([]models.TaskTemplate, error) {
	var templates []models.TaskTemplate
	err := r.db.
		Where("is_active = ? AND is_recurring = ?", true, true).
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}
