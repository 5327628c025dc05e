package lifecycle

import "github.com/spec-kit/helpdesk/internal/domain"

// Operation names an engine operation for the authorization table.
type Operation string

const (
	OpCreate       Operation = "create"
	OpAssign       Operation = "assign"
	OpSelfAssign   Operation = "self_assign"
	OpAccept       Operation = "accept"
	OpReject       Operation = "reject"
	OpUpdateStatus Operation = "update_status"
	OpEditContent  Operation = "edit_content"
	OpSetDueDate   Operation = "set_due_date"
)

// rolePolicy is the coarse role gate: it answers whether a role may invoke
// an operation at all. Identity and state preconditions (ownership,
// assignment, acceptance) are checked by the operations themselves.
var rolePolicy = map[domain.Role]map[Operation]bool{
	domain.RoleAdmin: {
		OpCreate:       true,
		OpAssign:       true,
		OpSelfAssign:   false,
		OpAccept:       false,
		OpReject:       false,
		OpUpdateStatus: true,
		OpEditContent:  true,
		OpSetDueDate:   true,
	},
	domain.RoleManager: {
		OpCreate:       true,
		OpAssign:       true,
		OpSelfAssign:   false,
		OpAccept:       false,
		OpReject:       false,
		OpUpdateStatus: true,
		OpEditContent:  true,
		OpSetDueDate:   true,
	},
	domain.RoleAgent: {
		OpCreate:       true,
		OpAssign:       false,
		OpSelfAssign:   true,
		OpAccept:       true,
		OpReject:       true,
		OpUpdateStatus: true,
		OpEditContent:  true,
		OpSetDueDate:   true,
	},
	domain.RoleCustomer: {
		OpCreate:       true,
		OpAssign:       false,
		OpSelfAssign:   false,
		OpAccept:       false,
		OpReject:       false,
		OpUpdateStatus: false,
		OpEditContent:  true,
		OpSetDueDate:   false,
	},
}

// Allowed reports whether the role may invoke the operation.
func Allowed(role domain.Role, op Operation) bool {
	perms, ok := rolePolicy[role]
	if !ok {
		return false
	}
	return perms[op]
}

// agentNextStatus is the strict forward chain agents must follow. Managers
// and admins bypass it.
var agentNextStatus = map[domain.TicketStatus]domain.TicketStatus{
	domain.TicketStatusOpen:       domain.TicketStatusInProgress,
	domain.TicketStatusInProgress: domain.TicketStatusResolved,
	domain.TicketStatusResolved:   domain.TicketStatusClosed,
}

// AgentMayTransition reports whether an agent may move a ticket from
// current to next.
func AgentMayTransition(current, next domain.TicketStatus) bool {
	return agentNextStatus[current] == next
}
