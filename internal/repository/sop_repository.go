package repository

import (
	"github.com/kfujiw/raci-task-tracker/internal/models"
	"gorm.io/gorm"
)

// GormSOPRepository is a GORM implementation of SOPRepository
type GormSOPRepository struct {
	db *gorm.DB
}

// NewSOPRepository creates a new SOPRepository
func NewSOPRepository(db *gorm.DB) SOPRepository {
	return &GormSOPRepository{db: db}
}

// Create creates a new SOP
func (r *GormSOPRepository) Create(sop *models.SOP) error {
	return r.db.Create(sop).Error
}

// FindByID finds an SOP by ID
func (r *GormSOPRepository) FindByID(id uint64) (*models.SOP, error) {
	var sop models.SOP
	if err := r.db.First(&sop, id).Error; err != nil {
		return nil, err
	}
	return &sop, nil
}

// Update updates an SOP
func (r *GormSOPRepository) Update(sop *models.SOP) error {
	return r.db.Save(sop).Error
}

// List returns all SOPs
func (r *GormSOPRepository) List() ([]models.SOP, error) {
	var sops []models.SOP
	if err := r.db.Order("title ASC").Find(&sops).Error; err != nil {
		return nil, err
	}
	return sops, nil
}
