package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstanceStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.IsValid(), "expected %s to be valid", s)
	}

	assert.False(t, InstanceStatus("done").IsValid())
	assert.False(t, InstanceStatus("").IsValid())
}

func TestInstanceStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusAssigned.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.False(t, StatusBlocked.IsTerminal())
}

func TestCanTransition_OpenStates(t *testing.T) {
	open := []InstanceStatus{StatusAssigned, StatusInProgress, StatusBlocked}

	for _, from := range open {
		for _, to := range AllStatuses {
			if from == to {
				assert.False(t, CanTransition(from, to), "no-op %s -> %s must be rejected", from, to)
				continue
			}
			assert.True(t, CanTransition(from, to), "expected %s -> %s to be legal", from, to)
		}
	}
}

func TestCanTransition_TerminalStatesAreLocked(t *testing.T) {
	for _, from := range []InstanceStatus{StatusCompleted, StatusFailed} {
		for _, to := range AllStatuses {
			assert.False(t, CanTransition(from, to), "terminal %s must not transition to %s", from, to)
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition(InstanceStatus("done"), StatusAssigned))
	assert.False(t, CanTransition(StatusAssigned, InstanceStatus("done")))
}

func TestHasAnyRole(t *testing.T) {
	roles := []RoleName{RoleManager, RoleTeamMember}

	assert.True(t, HasAnyRole(roles, RoleManager))
	assert.True(t, HasAnyRole(roles, RoleAdmin, RoleTeamMember))
	assert.False(t, HasAnyRole(roles, RoleAdmin))
	assert.False(t, HasAnyRole(nil, RoleAdmin))
}

func TestTaskTemplate_References(t *testing.T) {
	backup := uint64(3)
	tmpl := &TaskTemplate{
		PrimaryResponsibleUserID: 1,
		AccountableUserID:        2,
		BackupResponsibleUserID:  &backup,
	}

	assert.True(t, tmpl.References(1))
	assert.True(t, tmpl.References(2))
	assert.True(t, tmpl.References(3))
	assert.False(t, tmpl.References(4))

	tmpl.BackupResponsibleUserID = nil
	assert.False(t, tmpl.References(3))
}
