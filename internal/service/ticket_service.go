package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/lifecycle"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// maxWriteAttempts bounds the reload-and-retry loop on revision conflicts.
const maxWriteAttempts = 3

// TicketService coordinates ticket workflows: it loads state, asks the
// lifecycle engine for the transition, writes the result conditionally on
// the revision it read, and publishes the resulting events.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	history    repository.TicketHistoryRepository
	engine     *lifecycle.Engine
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.TicketHistoryRepository
	Engine      *lifecycle.Engine
	Dispatcher  events.Dispatcher
}

// TicketListFilter describes listing filters before role scoping.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Categories []domain.TicketCategory
	AssigneeID *string
	Unassigned bool
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	engine := deps.Engine
	if engine == nil {
		engine = lifecycle.NewEngine()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		engine:     engine,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a new ticket on behalf of the actor.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input lifecycle.CreateInput) (*domain.Ticket, error) {
	ticket, effects, err := s.engine.Create(actor, input)
	if err != nil {
		return nil, err
	}
	ticket.ExternalKey = generateTicketKey()
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEffects(ctx, actor, ticket, effects)
	return ticket, nil
}

// Assign hands the ticket to the named agent, or clears the assignment
// when agentID is nil. Managers and admins only.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID string, agentID *string) (*domain.Ticket, error) {
	var target *domain.User
	if agentID != nil {
		user, err := s.users.GetByID(ctx, *agentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("agent", map[string]any{"user_id": *agentID})
			}
			return nil, apperrors.MapError(err)
		}
		if !user.Active {
			return nil, apperrors.NewConflict("agent inactive", map[string]any{"user_id": user.ID})
		}
		target = user
	}
	return s.transition(ctx, actor, ticketID, func(t domain.Ticket) (domain.Ticket, []lifecycle.Effect, error) {
		return s.engine.Assign(actor, t, target)
	})
}

// Claim lets an agent self-assign an unclaimed open ticket.
func (s *TicketService) Claim(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, func(t domain.Ticket) (domain.Ticket, []lifecycle.Effect, error) {
		return s.engine.SelfAssign(actor, t)
	})
}

// Accept acknowledges a pending assignment.
func (s *TicketService) Accept(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, func(t domain.Ticket) (domain.Ticket, []lifecycle.Effect, error) {
		return s.engine.Accept(actor, t)
	})
}

// Reject declines a pending assignment with a reason.
func (s *TicketService) Reject(ctx context.Context, actor *domain.User, ticketID, reason string) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, func(t domain.Ticket) (domain.Ticket, []lifecycle.Effect, error) {
		return s.engine.Reject(actor, t, reason)
	})
}

// UpdateStatus moves the ticket along the workflow.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, next domain.TicketStatus) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, func(t domain.Ticket) (domain.Ticket, []lifecycle.Effect, error) {
		return s.engine.UpdateStatus(actor, t, next)
	})
}

// EditContent updates ticket content fields.
func (s *TicketService) EditContent(ctx context.Context, actor *domain.User, ticketID string, edit lifecycle.ContentEdit) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, func(t domain.Ticket) (domain.Ticket, []lifecycle.Effect, error) {
		return s.engine.EditContent(actor, t, edit)
	})
}

// SetDueDate sets or clears the due date.
func (s *TicketService) SetDueDate(ctx context.Context, actor *domain.User, ticketID string, due *time.Time) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, func(t domain.Ticket) (domain.Ticket, []lifecycle.Effect, error) {
		return s.engine.SetDueDate(actor, t, due)
	})
}

// Get fetches a ticket, enforcing visibility: staff see everything,
// customers only their own tickets.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReadAccess(actor, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// List returns tickets visible to the actor. Customers see their own;
// agents see their working set (assigned to them or unassigned) unless a
// narrower filter is requested; managers and admins see everything.
func (s *TicketService) List(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Categories: filter.Categories,
		AssigneeID: filter.AssigneeID,
		Unassigned: filter.Unassigned,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	switch actor.Role {
	case domain.RoleCustomer:
		repoFilter.CreatedBy = &actor.ID
		repoFilter.AssigneeID = nil
		repoFilter.Unassigned = false
	case domain.RoleAgent:
		if repoFilter.AssigneeID == nil && !repoFilter.Unassigned {
			repoFilter.VisibleToAgent = &actor.ID
		}
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Delete removes a ticket permanently. Admin only; no workflow rules apply.
func (s *TicketService) Delete(ctx context.Context, actor *domain.User, ticketID string) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins may delete tickets")
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// History returns audit entries for a ticket. Staff see everything;
// customers see status and assignment changes on their own tickets.
func (s *TicketService) History(ctx context.Context, actor *domain.User, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReadAccess(actor, ticket); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if actor.Role.Staff() {
		return entries, nil
	}
	visible := make([]domain.TicketHistory, 0, len(entries))
	for _, entry := range entries {
		switch entry.ChangeType {
		case domain.ChangeTypeStatus, domain.ChangeTypeAssignment, domain.ChangeTypeCreated:
			visible = append(visible, entry)
		}
	}
	return visible, nil
}

// transition runs one engine operation under compare-and-swap semantics:
// read, decide, write conditioned on the revision read; on a lost race,
// re-read and re-decide. Exactly one concurrent writer wins.
func (s *TicketService) transition(ctx context.Context, actor *domain.User, ticketID string, op func(domain.Ticket) (domain.Ticket, []lifecycle.Effect, error)) (*domain.Ticket, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		current, err := s.loadTicket(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		updated, effects, err := op(*current)
		if err != nil {
			return nil, err
		}
		if len(effects) == 0 {
			// accepted no-op, nothing to persist
			return &updated, nil
		}
		if err := s.tickets.UpdateRevisioned(ctx, &updated); err != nil {
			if errors.Is(err, repository.ErrRevisionConflict) {
				continue
			}
			return nil, apperrors.MapError(err)
		}
		s.publishEffects(ctx, actor, &updated, effects)
		return &updated, nil
	}
	return nil, apperrors.NewConflict("ticket was modified concurrently, retry", map[string]any{"ticket_id": ticketID})
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) checkReadAccess(actor *domain.User, ticket *domain.Ticket) error {
	if actor.Role.Staff() {
		return nil
	}
	if ticket.CreatedBy != actor.ID {
		return apperrors.NewForbidden("not your ticket")
	}
	return nil
}

func (s *TicketService) publishEffects(ctx context.Context, actor *domain.User, ticket *domain.Ticket, effects []lifecycle.Effect) {
	if s.dispatcher == nil {
		return
	}
	for _, effect := range effects {
		event, ok := eventFromEffect(effect, actor, ticket)
		if !ok {
			continue
		}
		_ = s.dispatcher.Publish(ctx, event)
	}
}

// eventFromEffect translates an engine effect descriptor into a dispatcher
// event with identity and timing attached.
func eventFromEffect(effect lifecycle.Effect, actor *domain.User, ticket *domain.Ticket) (events.Event, bool) {
	event := events.Event{
		ID:        uuid.NewString(),
		TicketID:  ticket.ID,
		Actor:     events.Actor{ID: actor.ID, Role: actor.Role},
		Timestamp: time.Now(),
	}
	switch e := effect.(type) {
	case lifecycle.TicketCreated:
		event.Type = events.EventTicketCreated
		event.Payload = events.TicketCreatedPayload{Title: e.Title, Category: e.Category, Priority: e.Priority}
	case lifecycle.TicketAssigned:
		event.Type = events.EventTicketAssigned
		event.Payload = events.TicketAssignedPayload{AgentID: e.AgentID}
	case lifecycle.TicketUnassigned:
		event.Type = events.EventTicketUnassigned
		event.Payload = events.TicketUnassignedPayload{AgentID: e.AgentID}
	case lifecycle.TicketAccepted:
		event.Type = events.EventTicketAccepted
		event.Payload = events.TicketAcceptedPayload{AgentID: e.AgentID}
	case lifecycle.TicketRejected:
		event.Type = events.EventTicketRejected
		event.Payload = events.TicketRejectedPayload{AgentID: e.AgentID, Reason: e.Reason}
	case lifecycle.StatusChanged:
		event.Type = events.EventTicketStatusChanged
		event.Payload = events.TicketStatusChangedPayload{OldStatus: e.From, NewStatus: e.To}
	case lifecycle.Resolved:
		event.Type = events.EventTicketResolved
		event.Payload = events.TicketResolvedPayload{ResolvedAt: e.At}
	case lifecycle.ContentEdited:
		event.Type = events.EventTicketEdited
		event.Payload = events.TicketEditedPayload{Fields: e.Fields}
	case lifecycle.DueDateChanged:
		event.Type = events.EventTicketDueDateSet
		event.Payload = events.TicketDueDateSetPayload{DueDate: e.DueDate}
	default:
		return events.Event{}, false
	}
	return event, true
}

func generateTicketKey() string {
	return "HD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
