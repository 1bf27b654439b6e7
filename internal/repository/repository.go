package repository

import (
	"time"

	"github.com/kfujiw/raci-task-tracker/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithRole creates a user and assigns the given role within a single transaction
	CreateWithRole(user *models.User, role models.RoleName) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// ListRoles returns the role names assigned to a user
	ListRoles(userID uint64) ([]models.RoleName, error)

	// AssignRole assigns a role to a user (no-op if already assigned)
	AssignRole(userID uint64, role models.RoleName) error

	// List returns all active users
	List() ([]models.User, error)

	// CountByIDs counts how many of the given user IDs exist and are active
	CountByIDs(ids []uint64) (int64, error)
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Create(team *models.Team) error
	FindByID(id uint64) (*models.Team, error)
	Update(team *models.Team) error
	List() ([]models.Team, error)
	ListMembers(teamID uint64) ([]models.User, error)
}

// SOPRepository defines the interface for SOP data access
type SOPRepository interface {
	Create(sop *models.SOP) error
	FindByID(id uint64) (*models.SOP, error)
	Update(sop *models.SOP) error
	List() ([]models.SOP, error)
}

// TemplateFilter holds filtering options for listing task templates
type TemplateFilter struct {
	IncludeInactive   bool
	ParticipantUserID *uint64
	TeamID            *uint64
	CreatedByID       *uint64
	Page              int
	PageSize          int
}

// TemplateRepository defines the interface for task template data access
type TemplateRepository interface {
	// Create creates a new template
	Create(template *models.TaskTemplate) error

	// CreateWithInitialInstance creates a template and its first instance,
	// including the instance's creation log entry, in one transaction
	CreateWithInitialInstance(template *models.TaskTemplate, instance *models.TaskInstance) error

	// FindByID finds a template by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.TaskTemplate, error)

	// List retrieves templates with filtering and pagination
	List(filter TemplateFilter) ([]models.TaskTemplate, int64, error)

	// Update updates a template
	Update(template *models.TaskTemplate) error

	// Deactivate soft-deletes a template by clearing its active flag
	Deactivate(id uint64) error

	// ListActiveRecurring returns all active templates with a recurrence pattern
	ListActiveRecurring() ([]models.TaskTemplate, error)
}

// InstanceFilter holds filtering options for listing task instances
type InstanceFilter struct {
	TemplateID        *uint64
	Status            *models.InstanceStatus
	ParticipantUserID *uint64
	TeamID            *uint64
	DueBefore         *time.Time
	DueAfter          *time.Time
	Page              int
	PageSize          int
}

// ChangeStatusInput carries one status transition through the transactional
// write path. ExpectedVersion is the optimistic concurrency token read by the
// caller; the update fails with ErrVersionConflict if it no longer matches.
type ChangeStatusInput struct {
	InstanceID      uint64
	ExpectedVersion uint64
	OldStatus       models.InstanceStatus
	NewStatus       models.InstanceStatus
	ActorID         *uint64
	Comment         *string
	At              time.Time
}

// InstanceRepository defines the interface for task instance data access
type InstanceRepository interface {
	// Create creates an instance together with its creation log entry
	Create(instance *models.TaskInstance, actorID *uint64) error

	// FindByID finds an instance by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.TaskInstance, error)

	// List retrieves instances with filtering and pagination
	List(filter InstanceFilter) ([]models.TaskInstance, int64, error)

	// LatestForTemplate returns the most recently created instance of a template
	LatestForTemplate(templateID uint64) (*models.TaskInstance, error)

	// ChangeStatus atomically updates the instance status, appends the status
	// log entry, and, for terminal statuses, appends the outcome log entry
	ChangeStatus(input ChangeStatusInput) (*models.StatusLogEntry, error)

	// ListStatusLogs returns an instance's status log, newest first
	ListStatusLogs(instanceID uint64) ([]models.StatusLogEntry, error)

	// RecentStatusLogs returns the newest log entries across the given
	// instances, newest first
	RecentStatusLogs(instanceIDs []uint64, limit int) ([]models.StatusLogEntry, error)

	// FindOutcome returns the outcome log entry of an instance, if any
	FindOutcome(instanceID uint64) (*models.OutcomeLogEntry, error)
}
