package lifecycle

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Effect describes a side effect a transition produced. The engine only
// reports effects; notification and audit collaborators consume them.
type Effect interface {
	// Name identifies the effect kind for dispatch and logging.
	Name() string
}

// TicketCreated is emitted once per ticket.
type TicketCreated struct {
	Title    string
	Category domain.TicketCategory
	Priority domain.TicketPriority
}

func (TicketCreated) Name() string { return "ticket_created" }

// TicketAssigned is emitted when a ticket is handed to an agent, whether by
// a manager or via self-assign. Acceptance is pending until the agent acts.
type TicketAssigned struct {
	AgentID string
}

func (TicketAssigned) Name() string { return "ticket_assigned" }

// TicketUnassigned is emitted when an assignment is explicitly cleared.
type TicketUnassigned struct {
	AgentID string
}

func (TicketUnassigned) Name() string { return "ticket_unassigned" }

// TicketAccepted is emitted when the assignee acknowledges the ticket.
type TicketAccepted struct {
	AgentID string
}

func (TicketAccepted) Name() string { return "ticket_accepted" }

// TicketRejected is emitted when the assignee declines the ticket. The
// ticket returns to the unassigned pool; the reason is durable only through
// this effect and the audit trail built from it.
type TicketRejected struct {
	AgentID string
	Reason  string
}

func (TicketRejected) Name() string { return "ticket_rejected" }

// StatusChanged is emitted for every effective workflow transition.
type StatusChanged struct {
	From domain.TicketStatus
	To   domain.TicketStatus
}

func (StatusChanged) Name() string { return "status_changed" }

// Resolved is emitted the first time a ticket enters RESOLVED.
type Resolved struct {
	At time.Time
}

func (Resolved) Name() string { return "resolved" }

// ContentEdited is emitted when title, description or tags change.
type ContentEdited struct {
	Fields []string
}

func (ContentEdited) Name() string { return "content_edited" }

// DueDateChanged is emitted when staff set or clear the due date.
type DueDateChanged struct {
	DueDate *time.Time
}

func (DueDateChanged) Name() string { return "due_date_changed" }
