package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		role domain.Role
		op   Operation
		want bool
	}{
		{domain.RoleAdmin, OpCreate, true},
		{domain.RoleAdmin, OpAssign, true},
		{domain.RoleAdmin, OpSelfAssign, false},
		{domain.RoleAdmin, OpAccept, false},
		{domain.RoleAdmin, OpReject, false},
		{domain.RoleAdmin, OpUpdateStatus, true},
		{domain.RoleAdmin, OpSetDueDate, true},

		{domain.RoleManager, OpAssign, true},
		{domain.RoleManager, OpSelfAssign, false},
		{domain.RoleManager, OpAccept, false},
		{domain.RoleManager, OpUpdateStatus, true},

		{domain.RoleAgent, OpAssign, false},
		{domain.RoleAgent, OpSelfAssign, true},
		{domain.RoleAgent, OpAccept, true},
		{domain.RoleAgent, OpReject, true},
		{domain.RoleAgent, OpUpdateStatus, true},
		{domain.RoleAgent, OpSetDueDate, true},

		{domain.RoleCustomer, OpCreate, true},
		{domain.RoleCustomer, OpEditContent, true},
		{domain.RoleCustomer, OpAssign, false},
		{domain.RoleCustomer, OpSelfAssign, false},
		{domain.RoleCustomer, OpAccept, false},
		{domain.RoleCustomer, OpReject, false},
		{domain.RoleCustomer, OpUpdateStatus, false},
		{domain.RoleCustomer, OpSetDueDate, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Allowed(tc.role, tc.op), "%s/%s", tc.role, tc.op)
	}
}

func TestAllowedUnknownRole(t *testing.T) {
	assert.False(t, Allowed(domain.Role("SUPERUSER"), OpCreate))
}

func TestAgentMayTransition(t *testing.T) {
	cases := []struct {
		current domain.TicketStatus
		next    domain.TicketStatus
		want    bool
	}{
		{domain.TicketStatusOpen, domain.TicketStatusInProgress, true},
		{domain.TicketStatusInProgress, domain.TicketStatusResolved, true},
		{domain.TicketStatusResolved, domain.TicketStatusClosed, true},
		{domain.TicketStatusOpen, domain.TicketStatusResolved, false},
		{domain.TicketStatusOpen, domain.TicketStatusClosed, false},
		{domain.TicketStatusInProgress, domain.TicketStatusOpen, false},
		{domain.TicketStatusResolved, domain.TicketStatusOpen, false},
		{domain.TicketStatusClosed, domain.TicketStatusOpen, false},
		{domain.TicketStatusClosed, domain.TicketStatusResolved, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AgentMayTransition(tc.current, tc.next), "%s -> %s", tc.current, tc.next)
	}
}
