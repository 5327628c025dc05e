package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeCreated    TicketChangeType = "CREATED"
	ChangeTypeStatus     TicketChangeType = "STATUS_CHANGE"
	ChangeTypeAssignment TicketChangeType = "ASSIGNMENT_CHANGE"
	ChangeTypeAcceptance TicketChangeType = "ACCEPTANCE_CHANGE"
	ChangeTypeContent    TicketChangeType = "CONTENT_CHANGE"
	ChangeTypeDueDate    TicketChangeType = "DUE_DATE_CHANGE"
)

// TicketHistory is an immutable audit trail entry. Rejection reasons are
// retained here durably even after the next assignment clears them from the
// ticket itself.
type TicketHistory struct {
	ID         string
	TicketID   string
	ActorID    string
	ActorRole  Role
	ChangeType TicketChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
