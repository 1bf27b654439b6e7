package models

import (
	"time"

	"gorm.io/gorm"
)

// SOP is a standard operating procedure document referenced by task templates.
type SOP struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Link      string         `gorm:"type:varchar(2048);not null" json:"link"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
