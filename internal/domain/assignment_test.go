package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignmentStates(t *testing.T) {
	t.Run("zero value is unassigned", func(t *testing.T) {
		var a Assignment
		assert.False(t, a.Assigned())
		assert.Equal(t, AcceptanceNone, a.Acceptance())
		_, ok := a.AgentID()
		assert.False(t, ok)
	})

	t.Run("pending", func(t *testing.T) {
		a := PendingAcceptance("agent-1")
		assert.True(t, a.Assigned())
		assert.True(t, a.AssignedTo("agent-1"))
		assert.False(t, a.AssignedTo("agent-2"))
		assert.Equal(t, AcceptancePending, a.Acceptance())
	})

	t.Run("accepted", func(t *testing.T) {
		a := AcceptedBy("agent-1")
		id, ok := a.AgentID()
		assert.True(t, ok)
		assert.Equal(t, "agent-1", id)
		assert.Equal(t, AcceptanceAccepted, a.Acceptance())
	})

	t.Run("unassigned never matches a user", func(t *testing.T) {
		a := Unassigned()
		assert.False(t, a.AssignedTo(""))
		assert.False(t, a.AssignedTo("agent-1"))
	})
}

func TestRoleStaff(t *testing.T) {
	assert.True(t, RoleAdmin.Staff())
	assert.True(t, RoleManager.Staff())
	assert.True(t, RoleAgent.Staff())
	assert.False(t, RoleCustomer.Staff())
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidStatus(TicketStatusInProgress))
	assert.False(t, ValidStatus("PAUSED"))
	assert.True(t, ValidPriority(TicketPriorityUrgent))
	assert.False(t, ValidPriority("MAYBE"))
	assert.True(t, ValidCategory(CategoryNetwork))
	assert.False(t, ValidCategory("COFFEE"))
	assert.True(t, ValidRole(RoleAgent))
	assert.False(t, ValidRole("ROOT"))
}
