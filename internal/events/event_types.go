package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketUnassigned    EventType = "ticket_unassigned"
	EventTicketAccepted      EventType = "ticket_accepted"
	EventTicketRejected      EventType = "ticket_rejected"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketResolved      EventType = "ticket_resolved"
	EventTicketEdited        EventType = "ticket_edited"
	EventTicketDueDateSet    EventType = "ticket_due_date_set"
	EventCommentAdded        EventType = "comment_added"
)

// AllEventTypes lists every event type, for subscribers that want the full
// stream.
func AllEventTypes() []EventType {
	return []EventType{
		EventTicketCreated,
		EventTicketAssigned,
		EventTicketUnassigned,
		EventTicketAccepted,
		EventTicketRejected,
		EventTicketStatusChanged,
		EventTicketResolved,
		EventTicketEdited,
		EventTicketDueDateSet,
		EventCommentAdded,
	}
}

// Actor identifies who triggered an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Category domain.TicketCategory `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AgentID string `json:"agent_id"`
}

// TicketUnassignedPayload payload.
type TicketUnassignedPayload struct {
	AgentID string `json:"agent_id"`
}

// TicketAcceptedPayload payload.
type TicketAcceptedPayload struct {
	AgentID string `json:"agent_id"`
}

// TicketRejectedPayload payload.
type TicketRejectedPayload struct {
	AgentID string `json:"agent_id"`
	Reason  string `json:"reason"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	ResolvedAt time.Time `json:"resolved_at"`
}

// TicketEditedPayload payload.
type TicketEditedPayload struct {
	Fields []string `json:"fields"`
}

// TicketDueDateSetPayload payload.
type TicketDueDateSetPayload struct {
	DueDate *time.Time `json:"due_date"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	IsInternal  bool   `json:"is_internal"`
	BodyPreview string `json:"body_preview"`
}
