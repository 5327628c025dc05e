package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

var (
	admin    = &domain.User{ID: "u-admin", Role: domain.RoleAdmin}
	manager  = &domain.User{ID: "u-manager", Role: domain.RoleManager}
	agent    = &domain.User{ID: "u-agent", Role: domain.RoleAgent}
	agentTwo = &domain.User{ID: "u-agent-2", Role: domain.RoleAgent}
	customer = &domain.User{ID: "u-customer", Role: domain.RoleCustomer}
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func openTicket() domain.Ticket {
	return domain.Ticket{
		ID:          "t-1",
		Title:       "printer jammed",
		Description: "third floor printer keeps jamming",
		Category:    domain.CategoryHardware,
		Priority:    domain.TicketPriorityMedium,
		Status:      domain.TicketStatusOpen,
		Assignment:  domain.Unassigned(),
		CreatedBy:   customer.ID,
	}
}

// requireCoherent asserts the assignment invariant: an agent id is present
// exactly when acceptance is pending or accepted.
func requireCoherent(t *testing.T, ticket domain.Ticket) {
	t.Helper()
	_, assigned := ticket.Assignment.AgentID()
	switch ticket.Assignment.Acceptance() {
	case domain.AcceptancePending, domain.AcceptanceAccepted:
		require.True(t, assigned, "acceptance %s requires an assignee", ticket.Assignment.Acceptance())
	default:
		require.False(t, assigned, "acceptance %s forbids an assignee", ticket.Assignment.Acceptance())
	}
}

func TestCreate(t *testing.T) {
	engine := NewEngine()

	t.Run("defaults and initial state", func(t *testing.T) {
		ticket, effects, err := engine.Create(customer, CreateInput{
			Title:       "  vpn broken  ",
			Description: "cannot connect since this morning",
		})
		require.NoError(t, err)
		assert.Equal(t, "vpn broken", ticket.Title)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
		assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
		assert.Equal(t, domain.CategoryOther, ticket.Category)
		assert.Equal(t, domain.AcceptanceNone, ticket.Assignment.Acceptance())
		assert.False(t, ticket.Assignment.Assigned())
		assert.Equal(t, customer.ID, ticket.CreatedBy)
		require.Len(t, effects, 1)
		assert.IsType(t, TicketCreated{}, effects[0])
		requireCoherent(t, *ticket)
	})

	t.Run("any role may create", func(t *testing.T) {
		for _, actor := range []*domain.User{admin, manager, agent, customer} {
			_, _, err := engine.Create(actor, CreateInput{Title: "a", Description: "b"})
			require.NoError(t, err, "role %s", actor.Role)
		}
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			name  string
			input CreateInput
		}{
			{"missing title", CreateInput{Description: "d"}},
			{"missing description", CreateInput{Title: "t"}},
			{"blank title", CreateInput{Title: "   ", Description: "d"}},
			{"bad priority", CreateInput{Title: "t", Description: "d", Priority: "SOMEDAY"}},
			{"bad category", CreateInput{Title: "t", Description: "d", Category: "FURNITURE"}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, _, err := engine.Create(customer, tc.input)
				assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
			})
		}
	})
}

func TestAssign(t *testing.T) {
	engine := NewEngine()

	t.Run("manager assigns agent", func(t *testing.T) {
		updated, effects, err := engine.Assign(manager, openTicket(), agent)
		require.NoError(t, err)
		assert.True(t, updated.Assignment.AssignedTo(agent.ID))
		assert.Equal(t, domain.AcceptancePending, updated.Assignment.Acceptance())
		require.Len(t, effects, 1)
		assert.Equal(t, TicketAssigned{AgentID: agent.ID}, effects[0])
		requireCoherent(t, updated)
	})

	t.Run("reassignment resets acceptance", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.AcceptedBy(agent.ID)
		updated, _, err := engine.Assign(admin, ticket, agentTwo)
		require.NoError(t, err)
		assert.True(t, updated.Assignment.AssignedTo(agentTwo.ID))
		assert.Equal(t, domain.AcceptancePending, updated.Assignment.Acceptance())
		requireCoherent(t, updated)
	})

	t.Run("assignment clears earlier rejection reason", func(t *testing.T) {
		ticket := openTicket()
		ticket.RejectionReason = "wrong queue"
		updated, _, err := engine.Assign(manager, ticket, agent)
		require.NoError(t, err)
		assert.Empty(t, updated.RejectionReason)
	})

	t.Run("unassign", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.PendingAcceptance(agent.ID)
		updated, effects, err := engine.Assign(manager, ticket, nil)
		require.NoError(t, err)
		assert.False(t, updated.Assignment.Assigned())
		assert.Equal(t, domain.AcceptanceNone, updated.Assignment.Acceptance())
		require.Len(t, effects, 1)
		assert.Equal(t, TicketUnassigned{AgentID: agent.ID}, effects[0])
		requireCoherent(t, updated)
	})

	t.Run("unassigning an unassigned ticket is a no-op", func(t *testing.T) {
		updated, effects, err := engine.Assign(manager, openTicket(), nil)
		require.NoError(t, err)
		assert.Empty(t, effects)
		assert.False(t, updated.Assignment.Assigned())
	})

	t.Run("target must be an agent", func(t *testing.T) {
		_, _, err := engine.Assign(manager, openTicket(), customer)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

		_, _, err = engine.Assign(manager, openTicket(), manager)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("agents and customers may not assign", func(t *testing.T) {
		for _, actor := range []*domain.User{agent, customer} {
			_, _, err := engine.Assign(actor, openTicket(), agentTwo)
			assert.True(t, apperrors.IsCode(err, "FORBIDDEN"), "role %s", actor.Role)
		}
	})
}

func TestSelfAssign(t *testing.T) {
	engine := NewEngine()

	t.Run("agent claims open unassigned ticket", func(t *testing.T) {
		updated, effects, err := engine.SelfAssign(agent, openTicket())
		require.NoError(t, err)
		assert.True(t, updated.Assignment.AssignedTo(agent.ID))
		assert.Equal(t, domain.AcceptancePending, updated.Assignment.Acceptance())
		require.Len(t, effects, 1)
		requireCoherent(t, updated)
	})

	t.Run("already assigned ticket conflicts", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.PendingAcceptance(agentTwo.ID)
		_, _, err := engine.SelfAssign(agent, ticket)
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	})

	t.Run("non-open ticket conflicts", func(t *testing.T) {
		ticket := openTicket()
		ticket.Status = domain.TicketStatusInProgress
		_, _, err := engine.SelfAssign(agent, ticket)
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	})

	t.Run("non-agents forbidden", func(t *testing.T) {
		for _, actor := range []*domain.User{admin, manager, customer} {
			_, _, err := engine.SelfAssign(actor, openTicket())
			assert.True(t, apperrors.IsCode(err, "FORBIDDEN"), "role %s", actor.Role)
		}
	})
}

func TestAccept(t *testing.T) {
	engine := NewEngine()

	t.Run("assignee accepts pending assignment", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.PendingAcceptance(agent.ID)
		updated, effects, err := engine.Accept(agent, ticket)
		require.NoError(t, err)
		assert.Equal(t, domain.AcceptanceAccepted, updated.Assignment.Acceptance())
		assert.True(t, updated.Assignment.AssignedTo(agent.ID))
		require.Len(t, effects, 1)
		assert.Equal(t, TicketAccepted{AgentID: agent.ID}, effects[0])
		requireCoherent(t, updated)
	})

	t.Run("non-assignee forbidden", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.PendingAcceptance(agent.ID)
		_, _, err := engine.Accept(agentTwo, ticket)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("already accepted conflicts", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.AcceptedBy(agent.ID)
		_, _, err := engine.Accept(agent, ticket)
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	})

	t.Run("unassigned ticket forbidden", func(t *testing.T) {
		_, _, err := engine.Accept(agent, openTicket())
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})
}

func TestReject(t *testing.T) {
	engine := NewEngine()

	t.Run("rejection releases the ticket and keeps the status", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.PendingAcceptance(agent.ID)
		updated, effects, err := engine.Reject(agent, ticket, "on leave this week")
		require.NoError(t, err)
		assert.False(t, updated.Assignment.Assigned())
		assert.Equal(t, domain.AcceptanceNone, updated.Assignment.Acceptance())
		assert.Equal(t, "on leave this week", updated.RejectionReason)
		assert.Equal(t, domain.TicketStatusOpen, updated.Status)
		require.Len(t, effects, 1)
		assert.Equal(t, TicketRejected{AgentID: agent.ID, Reason: "on leave this week"}, effects[0])
		requireCoherent(t, updated)
	})

	t.Run("reason is required", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.PendingAcceptance(agent.ID)
		_, _, err := engine.Reject(agent, ticket, "   ")
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("non-assignee forbidden", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.PendingAcceptance(agent.ID)
		_, _, err := engine.Reject(agentTwo, ticket, "not mine")
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("accepted assignment cannot be rejected", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.AcceptedBy(agent.ID)
		_, _, err := engine.Reject(agent, ticket, "changed my mind")
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	})
}

func TestUpdateStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	engine := NewEngineWithClock(fixedClock(now))

	t.Run("manager may jump to any status", func(t *testing.T) {
		ticket := openTicket()
		updated, effects, err := engine.UpdateStatus(manager, ticket, domain.TicketStatusClosed)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusClosed, updated.Status)
		require.Len(t, effects, 1)
		assert.Equal(t, StatusChanged{From: domain.TicketStatusOpen, To: domain.TicketStatusClosed}, effects[0])
	})

	t.Run("admin may reopen", func(t *testing.T) {
		ticket := openTicket()
		ticket.Status = domain.TicketStatusClosed
		updated, _, err := engine.UpdateStatus(admin, ticket, domain.TicketStatusOpen)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusOpen, updated.Status)
	})

	t.Run("setting the current status is a no-op", func(t *testing.T) {
		ticket := openTicket()
		updated, effects, err := engine.UpdateStatus(manager, ticket, domain.TicketStatusOpen)
		require.NoError(t, err)
		assert.Empty(t, effects)
		assert.Equal(t, ticket, updated)
	})

	t.Run("resolved timestamp is set once", func(t *testing.T) {
		ticket := openTicket()
		ticket.Status = domain.TicketStatusInProgress
		updated, effects, err := engine.UpdateStatus(manager, ticket, domain.TicketStatusResolved)
		require.NoError(t, err)
		require.NotNil(t, updated.ResolvedAt)
		assert.Equal(t, now, *updated.ResolvedAt)
		require.Len(t, effects, 2)
		assert.Equal(t, Resolved{At: now}, effects[1])

		// reopen and resolve again: the original timestamp stays
		reopened, _, err := engine.UpdateStatus(manager, updated, domain.TicketStatusOpen)
		require.NoError(t, err)
		resolvedAgain, effects, err := engine.UpdateStatus(manager, reopened, domain.TicketStatusResolved)
		require.NoError(t, err)
		assert.Equal(t, now, *resolvedAgain.ResolvedAt)
		require.Len(t, effects, 1)
	})

	t.Run("agent follows the forward chain on accepted tickets", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.AcceptedBy(agent.ID)

		updated, _, err := engine.UpdateStatus(agent, ticket, domain.TicketStatusInProgress)
		require.NoError(t, err)
		updated, _, err = engine.UpdateStatus(agent, updated, domain.TicketStatusResolved)
		require.NoError(t, err)
		updated, _, err = engine.UpdateStatus(agent, updated, domain.TicketStatusClosed)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusClosed, updated.Status)
	})

	t.Run("agent may not skip or go backwards", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.AcceptedBy(agent.ID)

		_, _, err := engine.UpdateStatus(agent, ticket, domain.TicketStatusResolved)
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))

		ticket.Status = domain.TicketStatusResolved
		_, _, err = engine.UpdateStatus(agent, ticket, domain.TicketStatusOpen)
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	})

	t.Run("agent needs an accepted assignment", func(t *testing.T) {
		ticket := openTicket()
		ticket.Assignment = domain.PendingAcceptance(agent.ID)
		_, _, err := engine.UpdateStatus(agent, ticket, domain.TicketStatusInProgress)
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))

		ticket.Assignment = domain.AcceptedBy(agentTwo.ID)
		_, _, err = engine.UpdateStatus(agent, ticket, domain.TicketStatusInProgress)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("customer may not change status", func(t *testing.T) {
		ticket := openTicket()
		_, _, err := engine.UpdateStatus(customer, ticket, domain.TicketStatusClosed)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, _, err := engine.UpdateStatus(manager, openTicket(), "ARCHIVED")
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})
}

func TestEditContent(t *testing.T) {
	engine := NewEngine()
	newTitle := "printer jammed again"
	newDescription := "replacing the fuser did not help"
	blank := "  "

	t.Run("customer edits own open ticket", func(t *testing.T) {
		updated, effects, err := engine.EditContent(customer, openTicket(), ContentEdit{
			Title:       &newTitle,
			Description: &newDescription,
		})
		require.NoError(t, err)
		assert.Equal(t, newTitle, updated.Title)
		assert.Equal(t, newDescription, updated.Description)
		require.Len(t, effects, 1)
		assert.Equal(t, ContentEdited{Fields: []string{"title", "description"}}, effects[0])
	})

	t.Run("customer may not edit once in progress", func(t *testing.T) {
		ticket := openTicket()
		ticket.Status = domain.TicketStatusInProgress
		_, _, err := engine.EditContent(customer, ticket, ContentEdit{Title: &newTitle})
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	})

	t.Run("customer may not edit another customer's ticket", func(t *testing.T) {
		ticket := openTicket()
		ticket.CreatedBy = "someone-else"
		_, _, err := engine.EditContent(customer, ticket, ContentEdit{Title: &newTitle})
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("agent edits only assigned tickets", func(t *testing.T) {
		_, _, err := engine.EditContent(agent, openTicket(), ContentEdit{Title: &newTitle})
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

		ticket := openTicket()
		ticket.Assignment = domain.AcceptedBy(agent.ID)
		updated, _, err := engine.EditContent(agent, ticket, ContentEdit{Title: &newTitle})
		require.NoError(t, err)
		assert.Equal(t, newTitle, updated.Title)
	})

	t.Run("manager edits regardless of status", func(t *testing.T) {
		ticket := openTicket()
		ticket.Status = domain.TicketStatusClosed
		updated, _, err := engine.EditContent(manager, ticket, ContentEdit{Description: &newDescription})
		require.NoError(t, err)
		assert.Equal(t, newDescription, updated.Description)
	})

	t.Run("blank values rejected", func(t *testing.T) {
		_, _, err := engine.EditContent(customer, openTicket(), ContentEdit{Title: &blank})
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

		_, _, err = engine.EditContent(customer, openTicket(), ContentEdit{Description: &blank})
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("unchanged values produce no effects", func(t *testing.T) {
		ticket := openTicket()
		sameTitle := ticket.Title
		updated, effects, err := engine.EditContent(customer, ticket, ContentEdit{Title: &sameTitle})
		require.NoError(t, err)
		assert.Empty(t, effects)
		assert.Equal(t, ticket, updated)
	})
}

func TestSetDueDate(t *testing.T) {
	engine := NewEngine()
	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("manager sets and clears", func(t *testing.T) {
		updated, effects, err := engine.SetDueDate(manager, openTicket(), &due)
		require.NoError(t, err)
		require.NotNil(t, updated.DueDate)
		assert.Equal(t, due, *updated.DueDate)
		require.Len(t, effects, 1)

		cleared, _, err := engine.SetDueDate(manager, updated, nil)
		require.NoError(t, err)
		assert.Nil(t, cleared.DueDate)
	})

	t.Run("agent must hold the assignment", func(t *testing.T) {
		_, _, err := engine.SetDueDate(agent, openTicket(), &due)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

		ticket := openTicket()
		ticket.Assignment = domain.AcceptedBy(agent.ID)
		_, _, err = engine.SetDueDate(agent, ticket, &due)
		require.NoError(t, err)
	})

	t.Run("customer forbidden", func(t *testing.T) {
		_, _, err := engine.SetDueDate(customer, openTicket(), &due)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})
}

// TestWorkflowScenario drives one ticket through a full multi-actor
// conversation: create, assign, reject, reassign, accept, work, resolve,
// close.
func TestWorkflowScenario(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	engine := NewEngineWithClock(fixedClock(now))

	created, _, err := engine.Create(customer, CreateInput{
		Title:       "laptop will not boot",
		Description: "black screen after the last update",
		Category:    domain.CategoryHardware,
		Priority:    domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	ticket := *created
	requireCoherent(t, ticket)

	ticket, _, err = engine.Assign(manager, ticket, agent)
	require.NoError(t, err)
	assert.Equal(t, domain.AcceptancePending, ticket.Assignment.Acceptance())
	requireCoherent(t, ticket)

	ticket, _, err = engine.Reject(agent, ticket, "hardware is not my queue")
	require.NoError(t, err)
	assert.False(t, ticket.Assignment.Assigned())
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "hardware is not my queue", ticket.RejectionReason)
	requireCoherent(t, ticket)

	ticket, _, err = engine.Assign(manager, ticket, agentTwo)
	require.NoError(t, err)
	assert.Empty(t, ticket.RejectionReason)
	requireCoherent(t, ticket)

	ticket, _, err = engine.Accept(agentTwo, ticket)
	require.NoError(t, err)
	assert.Equal(t, domain.AcceptanceAccepted, ticket.Assignment.Acceptance())
	requireCoherent(t, ticket)

	ticket, _, err = engine.UpdateStatus(agentTwo, ticket, domain.TicketStatusInProgress)
	require.NoError(t, err)
	ticket, _, err = engine.UpdateStatus(agentTwo, ticket, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, ticket.ResolvedAt)

	ticket, _, err = engine.UpdateStatus(manager, ticket, domain.TicketStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
	requireCoherent(t, ticket)
}
