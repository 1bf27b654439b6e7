package services

import (
	"fmt"
	"time"

	"github.com/kfujiw/raci-task-tracker/internal/models"
	"github.com/kfujiw/raci-task-tracker/internal/notify"
	"github.com/kfujiw/raci-task-tracker/internal/repository"
)

const recentLogLimit = 10

// Dashboard is the aggregated role-scoped view: counts by status, alert
// totals, and the most recent audit activity.
type Dashboard struct {
	TotalInstances int64                           `json:"total_instances"`
	StatusCounts   map[models.InstanceStatus]int64 `json:"status_counts"`
	OverdueCount   int                             `json:"overdue_count"`
	DueSoonCount   int                             `json:"due_soon_count"`
	Notifications  []notify.Notification           `json:"notifications"`
	RecentActivity []models.StatusLogEntry         `json:"recent_activity"`
}

// DashboardService aggregates instance state into role-gated dashboards
type DashboardService struct {
	instanceService *InstanceService
	instanceRepo    repository.InstanceRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(instanceService *InstanceService, instanceRepo repository.InstanceRepository) *DashboardService {
	return &DashboardService{
		instanceService: instanceService,
		instanceRepo:    instanceRepo,
	}
}

// Build assembles the dashboard for a user. Scope follows the same
// role-based visibility as instance listing: admin sees everything, a
// manager their team, a team member their own RACI assignments.
func (s *DashboardService) Build(userID uint64, roles []models.RoleName, now time.Time) (*Dashboard, error) {
	filter := repository.InstanceFilter{}
	if err := s.instanceService.applyVisibility(userID, roles, &filter); err != nil {
		return nil, err
	}

	instances, total, err := s.instanceRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}

	statusCounts := make(map[models.InstanceStatus]int64, len(models.AllStatuses))
	for _, status := range models.AllStatuses {
		statusCounts[status] = 0
	}
	instanceIDs := make([]uint64, 0, len(instances))
	for _, instance := range instances {
		statusCounts[instance.Status]++
		instanceIDs = append(instanceIDs, instance.ID)
	}

	notifications := notify.Derive(instances, now)
	overdue, dueSoon := 0, 0
	for _, n := range notifications {
		switch n.Kind {
		case notify.KindOverdue:
			overdue++
		case notify.KindDueSoon:
			dueSoon++
		}
	}

	recent, err := s.instanceRepo.RecentStatusLogs(instanceIDs, recentLogLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent activity: %w", err)
	}

	return &Dashboard{
		TotalInstances: total,
		StatusCounts:   statusCounts,
		OverdueCount:   overdue,
		DueSoonCount:   dueSoon,
		Notifications:  notifications,
		RecentActivity: recent,
	}, nil
}
