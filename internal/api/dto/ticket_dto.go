package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Tags        []string              `json:"tags"`
}

// EditTicketRequest payload; nil fields are untouched.
type EditTicketRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

// AssignTicketRequest payload. An absent agent_id clears the assignment.
type AssignTicketRequest struct {
	AgentID *string `json:"agent_id"`
}

// RejectTicketRequest payload.
type RejectTicketRequest struct {
	Reason string `json:"reason"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// SetDueDateRequest payload. A null due_date clears it.
type SetDueDateRequest struct {
	DueDate *time.Time `json:"due_date"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID              string                  `json:"id"`
	ExternalKey     string                  `json:"external_key"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	Category        domain.TicketCategory   `json:"category"`
	Priority        domain.TicketPriority   `json:"priority"`
	Tags            []string                `json:"tags"`
	Status          domain.TicketStatus     `json:"status"`
	AssigneeID      *string                 `json:"assignee_id"`
	Acceptance      domain.AcceptanceStatus `json:"acceptance_status"`
	RejectionReason string                  `json:"rejection_reason,omitempty"`
	CreatedBy       string                  `json:"created_by"`
	DueDate         *time.Time              `json:"due_date"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	ResolvedAt      *time.Time              `json:"resolved_at"`
}

// TicketHistoryResponse is one audit trail entry.
type TicketHistoryResponse struct {
	ID         string                  `json:"id"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	ActorID    string                  `json:"actor_id"`
	ActorRole  domain.Role             `json:"actor_role"`
	OldValue   map[string]any          `json:"old_value,omitempty"`
	NewValue   map[string]any          `json:"new_value,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}
