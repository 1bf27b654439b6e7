package models

import (
	"time"

	"gorm.io/gorm"
)

// RecurringSchedule is the recurrence pattern of a recurring template.
type RecurringSchedule string

const (
	ScheduleDaily   RecurringSchedule = "daily"
	ScheduleWeekly  RecurringSchedule = "weekly"
	ScheduleMonthly RecurringSchedule = "monthly"
)

// IsValid reports whether s is a known recurrence pattern.
func (s RecurringSchedule) IsValid() bool {
	switch s {
	case ScheduleDaily, ScheduleWeekly, ScheduleMonthly:
		return true
	}
	return false
}

// TaskTemplate is the reusable definition of a unit of work with its RACI
// assignment. Templates are never hard-deleted; deactivation flips IsActive.
type TaskTemplate struct {
	ID                       uint64             `gorm:"primarykey" json:"id"`
	Title                    string             `gorm:"type:varchar(255);not null" json:"title"`
	Description              string             `gorm:"type:text" json:"description"`
	ProcessIdentifier        string             `gorm:"type:varchar(64)" json:"process_identifier"`
	PrimaryResponsibleUserID uint64             `gorm:"not null" json:"primary_responsible_user_id"`
	AccountableUserID        uint64             `gorm:"not null" json:"accountable_user_id"`
	BackupResponsibleUserID  *uint64            `json:"backup_responsible_user_id"`
	SOPID                    *uint64            `json:"sop_id"`
	IsRecurring              bool               `gorm:"not null;default:false" json:"is_recurring"`
	RecurringSchedule        *RecurringSchedule `gorm:"type:varchar(20)" json:"recurring_schedule"`
	DeadlineType             *string            `gorm:"type:varchar(20)" json:"deadline_type"`
	DeadlineValue            *string            `gorm:"type:varchar(20)" json:"deadline_value"`
	IsActive                 bool               `gorm:"not null;default:true" json:"is_active"`
	CreatedByID              uint64             `gorm:"not null" json:"created_by_id"`
	CreatedAt                time.Time          `json:"created_at"`
	UpdatedAt                time.Time          `json:"updated_at"`
	DeletedAt                gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relations
	PrimaryResponsible User           `gorm:"foreignKey:PrimaryResponsibleUserID" json:"primary_responsible,omitempty"`
	Accountable        User           `gorm:"foreignKey:AccountableUserID" json:"accountable,omitempty"`
	BackupResponsible  *User          `gorm:"foreignKey:BackupResponsibleUserID" json:"backup_responsible,omitempty"`
	SOP                *SOP           `gorm:"foreignKey:SOPID" json:"sop,omitempty"`
	CreatedBy          User           `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Instances          []TaskInstance `gorm:"foreignKey:TemplateID" json:"instances,omitempty"`
}

// References reports whether the template's RACI assignment names the user.
func (t *TaskTemplate) References(userID uint64) bool {
	if t.PrimaryResponsibleUserID == userID || t.AccountableUserID == userID {
		return true
	}
	return t.BackupResponsibleUserID != nil && *t.BackupResponsibleUserID == userID
}
