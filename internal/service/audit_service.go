package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// AuditService turns the event stream into durable ticket history rows.
// Rejection reasons survive here after the next assignment clears them
// from the ticket itself.
type AuditService struct {
	history repository.TicketHistoryRepository
	logger  *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(history repository.TicketHistoryRepository, logger *zap.Logger) *AuditService {
	return &AuditService{history: history, logger: logger}
}

// RegisterHandlers subscribes to every event type that produces an audit row.
func (a *AuditService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil || a.history == nil {
		return
	}
	for _, eventType := range events.AllEventTypes() {
		dispatcher.Subscribe(eventType, a.handleEvent)
	}
}

func (a *AuditService) handleEvent(ctx context.Context, event events.Event) error {
	entry := &domain.TicketHistory{
		TicketID:  event.TicketID,
		ActorID:   event.Actor.ID,
		ActorRole: event.Actor.Role,
	}

	switch payload := event.Payload.(type) {
	case events.TicketCreatedPayload:
		entry.ChangeType = domain.ChangeTypeCreated
		entry.NewValue = map[string]any{
			"title":    payload.Title,
			"category": payload.Category,
			"priority": payload.Priority,
		}
	case events.TicketAssignedPayload:
		entry.ChangeType = domain.ChangeTypeAssignment
		entry.NewValue = map[string]any{
			"assignee_id": payload.AgentID,
			"acceptance":  domain.AcceptancePending,
		}
	case events.TicketUnassignedPayload:
		entry.ChangeType = domain.ChangeTypeAssignment
		entry.OldValue = map[string]any{"assignee_id": payload.AgentID}
		entry.NewValue = map[string]any{"assignee_id": nil}
	case events.TicketAcceptedPayload:
		entry.ChangeType = domain.ChangeTypeAcceptance
		entry.NewValue = map[string]any{
			"assignee_id": payload.AgentID,
			"acceptance":  domain.AcceptanceAccepted,
		}
	case events.TicketRejectedPayload:
		entry.ChangeType = domain.ChangeTypeAcceptance
		entry.OldValue = map[string]any{"assignee_id": payload.AgentID}
		entry.NewValue = map[string]any{
			"acceptance": domain.AcceptanceRejected,
			"reason":     payload.Reason,
		}
	case events.TicketStatusChangedPayload:
		entry.ChangeType = domain.ChangeTypeStatus
		entry.OldValue = map[string]any{"status": payload.OldStatus}
		entry.NewValue = map[string]any{"status": payload.NewStatus}
	case events.TicketEditedPayload:
		entry.ChangeType = domain.ChangeTypeContent
		entry.NewValue = map[string]any{"fields": payload.Fields}
	case events.TicketDueDateSetPayload:
		entry.ChangeType = domain.ChangeTypeDueDate
		entry.NewValue = map[string]any{"due_date": payload.DueDate}
	default:
		return nil
	}

	if err := a.history.Create(ctx, entry); err != nil {
		a.logger.Error("failed to record ticket history",
			zap.String("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}
