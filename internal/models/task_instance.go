package models

import "time"

// TaskInstance is one concrete occurrence of a template. Instances are never
// deleted; the status field is the only mutable state and every change goes
// through the transactional status-change path. Version is the optimistic
// concurrency token bumped on every status change.
type TaskInstance struct {
	ID                 uint64         `gorm:"primarykey" json:"id"`
	TemplateID         uint64         `gorm:"not null;index" json:"template_id"`
	InstanceIdentifier string         `gorm:"type:varchar(64);uniqueIndex" json:"instance_identifier"`
	Status             InstanceStatus `gorm:"type:varchar(20);not null;default:'assigned'" json:"status"`
	DueDate            *time.Time     `json:"due_date"`
	Version            uint64         `gorm:"not null;default:1" json:"version"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`

	// Relations
	Template   TaskTemplate     `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	StatusLogs []StatusLogEntry `gorm:"foreignKey:InstanceID" json:"status_logs,omitempty"`
	Outcome    *OutcomeLogEntry `gorm:"foreignKey:InstanceID" json:"outcome,omitempty"`
}
