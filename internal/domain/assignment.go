package domain

// AcceptanceStatus tracks whether an assigned agent has acknowledged a
// ticket. REJECTED never rests on a ticket: a rejection releases the
// assignment, so it appears only in events and audit history.
type AcceptanceStatus string

const (
	AcceptanceNone     AcceptanceStatus = "NONE"
	AcceptancePending  AcceptanceStatus = "PENDING"
	AcceptanceAccepted AcceptanceStatus = "ACCEPTED"
	AcceptanceRejected AcceptanceStatus = "REJECTED"
)

// Assignment is the acceptance sub-state of a ticket, scoped to one
// assignment. The constructors are the only way to build a non-zero value,
// so an agent id is present exactly when acceptance is pending or accepted.
// The zero value is unassigned.
type Assignment struct {
	agentID    string
	acceptance AcceptanceStatus
}

// Unassigned returns the empty assignment state.
func Unassigned() Assignment {
	return Assignment{}
}

// PendingAcceptance returns an assignment awaiting the agent's acknowledgment.
func PendingAcceptance(agentID string) Assignment {
	return Assignment{agentID: agentID, acceptance: AcceptancePending}
}

// AcceptedBy returns an assignment the agent has acknowledged.
func AcceptedBy(agentID string) Assignment {
	return Assignment{agentID: agentID, acceptance: AcceptanceAccepted}
}

// AgentID returns the assigned agent and whether one is present.
func (a Assignment) AgentID() (string, bool) {
	return a.agentID, a.agentID != ""
}

// Assigned reports whether an agent currently holds the ticket.
func (a Assignment) Assigned() bool {
	return a.agentID != ""
}

// AssignedTo reports whether userID currently holds the ticket.
func (a Assignment) AssignedTo(userID string) bool {
	return a.agentID != "" && a.agentID == userID
}

// Acceptance returns the acceptance status, AcceptanceNone for the zero value.
func (a Assignment) Acceptance() AcceptanceStatus {
	if a.acceptance == "" {
		return AcceptanceNone
	}
	return a.acceptance
}
