package models

import "time"

// StatusLogEntry is an append-only audit record of one status transition.
// A nil OldStatus marks the creation entry.
type StatusLogEntry struct {
	ID         uint64          `gorm:"primarykey" json:"id"`
	InstanceID uint64          `gorm:"not null;index" json:"task_instance_id"`
	OldStatus  *InstanceStatus `gorm:"type:varchar(20)" json:"old_status"`
	NewStatus  InstanceStatus  `gorm:"type:varchar(20);not null" json:"new_status"`
	UserID     *uint64         `json:"user_id"`
	Comment    *string         `gorm:"type:text" json:"comment"`
	ChangeTime time.Time       `gorm:"not null" json:"change_time"`

	// Relations
	Instance TaskInstance `gorm:"foreignKey:InstanceID" json:"-"`
	User     *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
