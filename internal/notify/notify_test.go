package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kfujiw/raci-task-tracker/internal/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestDerive_DueSoon(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	instances := []models.TaskInstance{
		{ID: 1, InstanceIdentifier: "TI-A", Status: models.StatusAssigned, DueDate: timePtr(now.Add(12 * time.Hour))},
	}

	got := Derive(instances, now)

	assert.Len(t, got, 1)
	assert.Equal(t, KindDueSoon, got[0].Kind)
	assert.Equal(t, uint64(1), got[0].InstanceID)
	assert.Equal(t, now, got[0].GeneratedAt)
}

func TestDerive_ExactlyDueEmitsNothing(t *testing.T) {
	// Due soon is strictly future: with zero time remaining the instance is
	// neither due soon nor overdue yet.
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	instances := []models.TaskInstance{
		{ID: 9, Status: models.StatusAssigned, DueDate: timePtr(now)},
	}

	assert.Empty(t, Derive(instances, now))
}

func TestDerive_DueSoonWindowEdge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	instances := []models.TaskInstance{
		{ID: 10, Status: models.StatusAssigned, DueDate: timePtr(now.Add(24 * time.Hour))},
	}

	got := Derive(instances, now)

	assert.Len(t, got, 1)
	assert.Equal(t, KindDueSoon, got[0].Kind)
}

func TestDerive_Overdue(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	instances := []models.TaskInstance{
		{ID: 2, Status: models.StatusAssigned, DueDate: timePtr(now.Add(-time.Hour))},
	}

	got := Derive(instances, now)

	assert.Len(t, got, 1)
	assert.Equal(t, KindOverdue, got[0].Kind)
}

func TestDerive_SkipsCompleted(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	instances := []models.TaskInstance{
		{ID: 3, Status: models.StatusCompleted, DueDate: timePtr(now.Add(-48 * time.Hour))},
	}

	assert.Empty(t, Derive(instances, now))
}

func TestDerive_SkipsNilDueDate(t *testing.T) {
	now := time.Now()
	instances := []models.TaskInstance{
		{ID: 4, Status: models.StatusInProgress},
	}

	assert.Empty(t, Derive(instances, now))
}

func TestDerive_SkipsFarFuture(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	instances := []models.TaskInstance{
		{ID: 5, Status: models.StatusAssigned, DueDate: timePtr(now.Add(48 * time.Hour))},
	}

	assert.Empty(t, Derive(instances, now))
}

func TestDerive_FailedStillNotifies(t *testing.T) {
	// Only completed is excluded from derivation; a failed instance past its
	// due date still projects overdue.
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	instances := []models.TaskInstance{
		{ID: 6, Status: models.StatusFailed, DueDate: timePtr(now.Add(-time.Hour))},
	}

	got := Derive(instances, now)

	assert.Len(t, got, 1)
	assert.Equal(t, KindOverdue, got[0].Kind)
}

func TestDerive_MostRecentFirst(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	instances := []models.TaskInstance{
		{ID: 1, Status: models.StatusAssigned, DueDate: timePtr(now.Add(time.Hour))},
		{ID: 2, Status: models.StatusAssigned, DueDate: timePtr(now.Add(2 * time.Hour))},
		{ID: 3, Status: models.StatusAssigned, DueDate: timePtr(now.Add(3 * time.Hour))},
	}

	got := Derive(instances, now)

	assert.Len(t, got, 3)
	assert.Equal(t, uint64(3), got[0].InstanceID)
	assert.Equal(t, uint64(1), got[2].InstanceID)
}
