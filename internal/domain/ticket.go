package domain

import "time"

// TicketStatus enumerates workflow states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// ValidStatus reports whether s is one of the known workflow states.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// TicketCategory classifies the kind of support request.
type TicketCategory string

const (
	CategoryHardware TicketCategory = "HARDWARE"
	CategorySoftware TicketCategory = "SOFTWARE"
	CategoryNetwork  TicketCategory = "NETWORK"
	CategoryAccess   TicketCategory = "ACCESS"
	CategoryOther    TicketCategory = "OTHER"
)

// ValidCategory reports whether c is a known category.
func ValidCategory(c TicketCategory) bool {
	switch c {
	case CategoryHardware, CategorySoftware, CategoryNetwork, CategoryAccess, CategoryOther:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	ExternalKey string
	Title       string
	Description string
	Category    TicketCategory
	Priority    TicketPriority
	Tags        []string
	Status      TicketStatus
	Assignment  Assignment
	// RejectionReason carries the reason from the most recent rejection.
	// Set when the assignee rejects, cleared by the next assignment.
	RejectionReason string
	CreatedBy       string
	DueDate         *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
	// Revision guards concurrent writers: ticket updates are conditional on
	// the revision that was read and increment it on success.
	Revision int64
}
