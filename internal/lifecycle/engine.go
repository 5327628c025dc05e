// Package lifecycle implements the ticket workflow rules: who may move a
// ticket between states, what the resulting state is, and which side
// effects a transition produces. Every operation is a pure function of
// (ticket, actor, input); it performs no I/O and either returns the fully
// updated ticket plus effects, or an error with the input untouched.
package lifecycle

import (
	"strings"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// Engine evaluates ticket transitions.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock returns an engine with an injected clock.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// CreateInput describes a new ticket.
type CreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
	Tags        []string
}

// ContentEdit describes a partial edit of ticket content. Nil fields are
// left untouched.
type ContentEdit struct {
	Title       *string
	Description *string
	Tags        *[]string
}

// Create builds a new ticket in the initial state. Any authenticated role
// may create; identity and external key assignment belong to the caller.
func (e *Engine) Create(actor *domain.User, in CreateInput) (*domain.Ticket, []Effect, error) {
	if !Allowed(actor.Role, OpCreate) {
		return nil, nil, apperrors.NewForbidden("role may not create tickets")
	}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" {
		return nil, nil, apperrors.NewValidationError("title required", nil)
	}
	if description == "" {
		return nil, nil, apperrors.NewValidationError("description required", nil)
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	category := in.Category
	if category == "" {
		category = domain.CategoryOther
	}
	if !domain.ValidCategory(category) {
		return nil, nil, apperrors.NewValidationError("invalid category", map[string]any{"category": category})
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Tags:        in.Tags,
		Status:      domain.TicketStatusOpen,
		Assignment:  domain.Unassigned(),
		CreatedBy:   actor.ID,
		CreatedAt:   e.now(),
	}
	effects := []Effect{TicketCreated{Title: title, Category: category, Priority: priority}}
	return ticket, effects, nil
}

// Assign hands the ticket to target, or clears the assignment when target
// is nil. Reassignment always resets acceptance to pending so a new
// assignee never inherits a stale accept/reject decision.
func (e *Engine) Assign(actor *domain.User, t domain.Ticket, target *domain.User) (domain.Ticket, []Effect, error) {
	if !Allowed(actor.Role, OpAssign) {
		return t, nil, apperrors.NewForbidden("only managers and admins may assign tickets")
	}

	if target == nil {
		previous, wasAssigned := t.Assignment.AgentID()
		t.Assignment = domain.Unassigned()
		t.RejectionReason = ""
		if !wasAssigned {
			return t, nil, nil
		}
		return t, []Effect{TicketUnassigned{AgentID: previous}}, nil
	}

	if target.Role != domain.RoleAgent {
		return t, nil, apperrors.NewValidationError("assignee must be an agent", map[string]any{"user_id": target.ID, "role": target.Role})
	}
	t.Assignment = domain.PendingAcceptance(target.ID)
	t.RejectionReason = ""
	return t, []Effect{TicketAssigned{AgentID: target.ID}}, nil
}

// SelfAssign lets an agent take an unclaimed open ticket. Acceptance is
// still required afterwards, same as a manager-initiated assignment.
func (e *Engine) SelfAssign(actor *domain.User, t domain.Ticket) (domain.Ticket, []Effect, error) {
	if !Allowed(actor.Role, OpSelfAssign) {
		return t, nil, apperrors.NewForbidden("only agents may claim tickets")
	}
	if t.Assignment.Assigned() {
		return t, nil, apperrors.NewConflict("ticket already assigned", conflictDetails(t))
	}
	if t.Status != domain.TicketStatusOpen {
		return t, nil, apperrors.NewConflict("only open tickets can be claimed", conflictDetails(t))
	}
	t.Assignment = domain.PendingAcceptance(actor.ID)
	t.RejectionReason = ""
	return t, []Effect{TicketAssigned{AgentID: actor.ID}}, nil
}

// Accept acknowledges a pending assignment. Only the assignee may accept.
func (e *Engine) Accept(actor *domain.User, t domain.Ticket) (domain.Ticket, []Effect, error) {
	if !Allowed(actor.Role, OpAccept) {
		return t, nil, apperrors.NewForbidden("only agents may accept assignments")
	}
	if !t.Assignment.AssignedTo(actor.ID) {
		return t, nil, apperrors.NewForbidden("ticket is not assigned to you")
	}
	if t.Assignment.Acceptance() != domain.AcceptancePending {
		return t, nil, apperrors.NewConflict("assignment is not pending acceptance", conflictDetails(t))
	}
	t.Assignment = domain.AcceptedBy(actor.ID)
	return t, []Effect{TicketAccepted{AgentID: actor.ID}}, nil
}

// Reject declines a pending assignment and releases the ticket back to the
// unassigned pool. Status is untouched; the reason stays on the ticket
// until the next assignment clears it.
func (e *Engine) Reject(actor *domain.User, t domain.Ticket, reason string) (domain.Ticket, []Effect, error) {
	if !Allowed(actor.Role, OpReject) {
		return t, nil, apperrors.NewForbidden("only agents may reject assignments")
	}
	if !t.Assignment.AssignedTo(actor.ID) {
		return t, nil, apperrors.NewForbidden("ticket is not assigned to you")
	}
	if t.Assignment.Acceptance() != domain.AcceptancePending {
		return t, nil, apperrors.NewConflict("assignment is not pending acceptance", conflictDetails(t))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return t, nil, apperrors.NewValidationError("rejection reason required", nil)
	}
	t.Assignment = domain.Unassigned()
	t.RejectionReason = reason
	return t, []Effect{TicketRejected{AgentID: actor.ID, Reason: reason}}, nil
}

// UpdateStatus moves the ticket along the workflow. Managers and admins may
// set any status from any status; agents follow the forward chain on
// tickets they have accepted; customers may not change status at all.
// Setting the current status again is an accepted no-op.
func (e *Engine) UpdateStatus(actor *domain.User, t domain.Ticket, next domain.TicketStatus) (domain.Ticket, []Effect, error) {
	if !domain.ValidStatus(next) {
		return t, nil, apperrors.NewValidationError("invalid status", map[string]any{"status": next})
	}
	if !Allowed(actor.Role, OpUpdateStatus) {
		return t, nil, apperrors.NewForbidden("role may not change ticket status")
	}
	if next == t.Status {
		return t, nil, nil
	}

	if actor.Role == domain.RoleAgent {
		if !t.Assignment.AssignedTo(actor.ID) {
			return t, nil, apperrors.NewForbidden("ticket is not assigned to you")
		}
		if t.Assignment.Acceptance() != domain.AcceptanceAccepted {
			return t, nil, apperrors.NewConflict("assignment must be accepted before working the ticket", conflictDetails(t))
		}
		if !AgentMayTransition(t.Status, next) {
			return t, nil, apperrors.NewConflict("transition not permitted for agents", conflictDetails(t))
		}
	}

	from := t.Status
	t.Status = next
	effects := []Effect{StatusChanged{From: from, To: next}}
	if next == domain.TicketStatusResolved && t.ResolvedAt == nil {
		at := e.now()
		t.ResolvedAt = &at
		effects = append(effects, Resolved{At: at})
	}
	return t, effects, nil
}

// EditContent updates title, description or tags. Customers may edit only
// their own ticket while it is open; staff may edit at any status, agents
// only on tickets assigned to them.
func (e *Engine) EditContent(actor *domain.User, t domain.Ticket, edit ContentEdit) (domain.Ticket, []Effect, error) {
	if !Allowed(actor.Role, OpEditContent) {
		return t, nil, apperrors.NewForbidden("role may not edit tickets")
	}
	switch actor.Role {
	case domain.RoleCustomer:
		if t.CreatedBy != actor.ID {
			return t, nil, apperrors.NewForbidden("not your ticket")
		}
		if t.Status != domain.TicketStatusOpen {
			return t, nil, apperrors.NewConflict("ticket can only be edited while open", conflictDetails(t))
		}
	case domain.RoleAgent:
		if !t.Assignment.AssignedTo(actor.ID) {
			return t, nil, apperrors.NewForbidden("ticket is not assigned to you")
		}
	}

	var fields []string
	if edit.Title != nil {
		title := strings.TrimSpace(*edit.Title)
		if title == "" {
			return t, nil, apperrors.NewValidationError("title required", nil)
		}
		if title != t.Title {
			t.Title = title
			fields = append(fields, "title")
		}
	}
	if edit.Description != nil {
		description := strings.TrimSpace(*edit.Description)
		if description == "" {
			return t, nil, apperrors.NewValidationError("description required", nil)
		}
		if description != t.Description {
			t.Description = description
			fields = append(fields, "description")
		}
	}
	if edit.Tags != nil {
		t.Tags = *edit.Tags
		fields = append(fields, "tags")
	}
	if len(fields) == 0 {
		return t, nil, nil
	}
	return t, []Effect{ContentEdited{Fields: fields}}, nil
}

// SetDueDate sets or clears the due date. Staff only; agents must hold the
// assignment.
func (e *Engine) SetDueDate(actor *domain.User, t domain.Ticket, due *time.Time) (domain.Ticket, []Effect, error) {
	if !Allowed(actor.Role, OpSetDueDate) {
		return t, nil, apperrors.NewForbidden("role may not set due dates")
	}
	if actor.Role == domain.RoleAgent && !t.Assignment.AssignedTo(actor.ID) {
		return t, nil, apperrors.NewForbidden("ticket is not assigned to you")
	}
	t.DueDate = due
	return t, []Effect{DueDateChanged{DueDate: due}}, nil
}

// conflictDetails reports the ticket state that caused a conflict so the
// caller can refresh and re-offer valid choices.
func conflictDetails(t domain.Ticket) map[string]any {
	details := map[string]any{
		"status":     t.Status,
		"acceptance": t.Assignment.Acceptance(),
	}
	if agentID, ok := t.Assignment.AgentID(); ok {
		details["assignee_id"] = agentID
	}
	return details
}
