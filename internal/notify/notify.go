// Package notify projects task instances into due-soon/overdue alerts for
// the dashboard badge. Read-only; nothing here touches the database.
package notify

import (
	"time"

	"github.com/kfujiw/raci-task-tracker/internal/constants"
	"github.com/kfujiw/raci-task-tracker/internal/models"
)

// Kind classifies a notification.
type Kind string

const (
	KindDueSoon Kind = "due_soon"
	KindOverdue Kind = "overdue"
)

// Notification is one derived alert for an instance.
type Notification struct {
	InstanceID         uint64                `json:"task_instance_id"`
	InstanceIdentifier string                `json:"instance_identifier"`
	TemplateTitle      string                `json:"template_title,omitempty"`
	Kind               Kind                  `json:"kind"`
	Status             models.InstanceStatus `json:"status"`
	DueDate            time.Time             `json:"due_date"`
	GeneratedAt        time.Time             `json:"generated_at"`
}

// Derive projects instances into notifications as of now. Instances without
// a due date and completed instances are skipped. Results are ordered most
// recently derived first.
func Derive(instances []models.TaskInstance, now time.Time) []Notification {
	notifications := make([]Notification, 0)

	for _, instance := range instances {
		if instance.DueDate == nil || instance.Status == models.StatusCompleted {
			continue
		}

		remaining := instance.DueDate.Sub(now)

		var kind Kind
		switch {
		case remaining < 0:
			kind = KindOverdue
		case remaining > 0 && remaining <= constants.DueSoonWindow:
			kind = KindDueSoon
		default:
			continue
		}

		notifications = append(notifications, Notification{
			InstanceID:         instance.ID,
			InstanceIdentifier: instance.InstanceIdentifier,
			TemplateTitle:      instance.Template.Title,
			Kind:               kind,
			Status:             instance.Status,
			DueDate:            *instance.DueDate,
			GeneratedAt:        now,
		})
	}

	// Most recently derived first
	for i, j := 0, len(notifications)-1; i < j; i, j = i+1, j-1 {
		notifications[i], notifications[j] = notifications[j], notifications[i]
	}

	return notifications
}
