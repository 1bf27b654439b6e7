package models

// InstanceStatus is the lifecycle status of a task instance.
type InstanceStatus string

const (
	StatusAssigned   InstanceStatus = "assigned"
	StatusInProgress InstanceStatus = "in_progress"
	StatusBlocked    InstanceStatus = "blocked"
	StatusCompleted  InstanceStatus = "completed"
	StatusFailed     InstanceStatus = "failed"
)

// AllStatuses lists every valid instance status.
var AllStatuses = []InstanceStatus{
	StatusAssigned,
	StatusInProgress,
	StatusBlocked,
	StatusCompleted,
	StatusFailed,
}

// statusTransitions is the allowed next-states per current state.
// completed and failed are terminal: no outgoing edges.
var statusTransitions = map[InstanceStatus][]InstanceStatus{
	StatusAssigned:   {StatusInProgress, StatusBlocked, StatusCompleted, StatusFailed},
	StatusInProgress: {StatusAssigned, StatusBlocked, StatusCompleted, StatusFailed},
	StatusBlocked:    {StatusAssigned, StatusInProgress, StatusCompleted, StatusFailed},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// IsValid reports whether s is a member of the closed status set.
func (s InstanceStatus) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// IsTerminal reports whether s is a terminal outcome status.
func (s InstanceStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from one status to another is legal.
// A no-op (from == to) is never legal.
func CanTransition(from, to InstanceStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
