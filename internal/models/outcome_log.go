package models

import "time"

// OutcomeLogEntry records the terminal outcome of an instance. The unique
// index on InstanceID keeps it to at most one per instance.
type OutcomeLogEntry struct {
	ID                uint64         `gorm:"primarykey" json:"id"`
	InstanceID        uint64         `gorm:"not null;uniqueIndex" json:"task_instance_id"`
	Outcome           InstanceStatus `gorm:"type:varchar(20);not null" json:"outcome"`
	CompletedByUserID *uint64        `json:"completed_by_user_id"`
	Comment           *string        `gorm:"type:text" json:"comment"`
	CompletionTime    time.Time      `gorm:"not null" json:"completion_time"`
	LoggedAt          time.Time      `gorm:"autoCreateTime" json:"logged_at"`

	// Relations
	Instance    TaskInstance `gorm:"foreignKey:InstanceID" json:"-"`
	CompletedBy *User        `gorm:"foreignKey:CompletedByUserID" json:"completed_by,omitempty"`
}
