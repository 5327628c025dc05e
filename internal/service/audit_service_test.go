package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
)

func TestAuditServiceRecordsHistory(t *testing.T) {
	history := &fakeHistoryRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	audit := NewAuditService(history, zap.NewNop())
	audit.RegisterHandlers(dispatcher)

	ctx := context.Background()
	actor := events.Actor{ID: "manager-1", Role: domain.RoleManager}

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:      events.EventTicketAssigned,
		TicketID:  "t-1",
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   events.TicketAssignedPayload{AgentID: "agent-1"},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketRejected,
		TicketID: "t-1",
		Actor:    events.Actor{ID: "agent-1", Role: domain.RoleAgent},
		Payload:  events.TicketRejectedPayload{AgentID: "agent-1", Reason: "wrong queue"},
	}))

	require.Len(t, history.entries, 2)

	assigned := history.entries[0]
	assert.Equal(t, domain.ChangeTypeAssignment, assigned.ChangeType)
	assert.Equal(t, "manager-1", assigned.ActorID)
	assert.Equal(t, "agent-1", assigned.NewValue["assignee_id"])

	rejected := history.entries[1]
	assert.Equal(t, domain.ChangeTypeAcceptance, rejected.ChangeType)
	assert.Equal(t, "wrong queue", rejected.NewValue["reason"], "the reason survives in the audit trail")
}

func TestAuditServiceIgnoresUnknownPayloads(t *testing.T) {
	history := &fakeHistoryRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	audit := NewAuditService(history, zap.NewNop())
	audit.RegisterHandlers(dispatcher)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketResolved,
		TicketID: "t-1",
		Payload:  events.TicketResolvedPayload{ResolvedAt: time.Now()},
	}))
	assert.Empty(t, history.entries)
}
