package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/kfujiw/raci-task-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the signup transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrAssignRole is returned when the role assignment fails inside the signup transaction.
	ErrAssignRole = errors.New("user repository: assign role failed")
	// ErrUnknownRole is returned when the requested role name has no row.
	ErrUnknownRole = errors.New("user repository: unknown role")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// CreateWithRole creates the user and their role assignment atomically.
func (r *GormUserRepository) CreateWithRole(user *models.User, roleName models.RoleName) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		var role models.Role
		if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUnknownRole, err)
		}

		userRole := models.UserRole{
			UserID:     user.ID,
			RoleID:     role.ID,
			AssignedAt: time.Now(),
		}
		if err := tx.Create(&userRole).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrAssignRole, err)
		}

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Team").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListRoles returns the role names assigned to a user
func (r *GormUserRepository) ListRoles(userID uint64) ([]models.RoleName, error) {
	var names []models.RoleName
	err := r.db.Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// AssignRole assigns a role to a user, ignoring an existing assignment
func (r *GormUserRepository) AssignRole(userID uint64, roleName models.RoleName) error {
	var role models.Role
	if err := r.db.Where("name = ?", roleName).First(&role).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownRole, err)
	}

	userRole := models.UserRole{
		UserID:     userID,
		RoleID:     role.ID,
		AssignedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&userRole).Error
}

// List returns all active users
func (r *GormUserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("is_active = ?", true).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CountByIDs counts how many of the given user IDs exist and are active
func (r *GormUserRepository) CountByIDs(ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.User{}).
		Where("id IN ? AND is_active = ?", ids, true).
		Count(&count).Error
	return count, err
}
