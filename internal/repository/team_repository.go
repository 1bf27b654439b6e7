package repository

import (
	"github.com/kfujiw/raci-task-tracker/internal/models"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a new team
func (r *GormTeamRepository) Create(team *models.Team) error {
	return r.db.Create(team).Error
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.Preload("Manager").First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(team *models.Team) error {
	return r.db.Save(team).Error
}

// List returns all teams
func (r *GormTeamRepository) List() ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.Preload("Manager").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// ListMembers lists the active users belonging to a team
func (r *GormTeamRepository) ListMembers(teamID uint64) ([]models.User, error) {
	var members []models.User
	if err := r.db.Where("team_id = ? AND is_active = ?", teamID, true).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
