package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

type fakeCommentRepo struct {
	comments map[string]domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]domain.Comment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	r.comments[comment.ID] = *comment
	return nil
}

func (r *fakeCommentRepo) Update(_ context.Context, comment *domain.Comment) error {
	if _, ok := r.comments[comment.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.comments[comment.ID] = *comment
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	comment, ok := r.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := comment
	return &copied, nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

type commentFixture struct {
	svc        *CommentService
	comments   *fakeCommentRepo
	tickets    *fakeTicketRepo
	dispatcher *recordingDispatcher
	ticket     domain.Ticket
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()
	comments := newFakeCommentRepo()
	tickets := newFakeTicketRepo()
	dispatcher := &recordingDispatcher{}

	ticket := domain.Ticket{
		ID:        "t-1",
		Title:     "wifi drops",
		Status:    domain.TicketStatusOpen,
		CreatedBy: svcCustomer.ID,
	}
	require.NoError(t, tickets.Create(context.Background(), &ticket))

	return &commentFixture{
		svc:        NewCommentService(comments, tickets, dispatcher),
		comments:   comments,
		tickets:    tickets,
		dispatcher: dispatcher,
		ticket:     ticket,
	}
}

func TestCommentAdd(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	comment, err := f.svc.Add(ctx, svcCustomer, f.ticket.ID, "it happens every morning", false)
	require.NoError(t, err)
	assert.Equal(t, svcCustomer.ID, comment.AuthorID)
	assert.False(t, comment.IsInternal)
	assert.Equal(t, []events.EventType{events.EventCommentAdded}, f.dispatcher.types())
}

func TestCommentAddValidation(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, svcCustomer, f.ticket.ID, "   ", false)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.svc.Add(ctx, svcCustomer, "missing", "hello", false)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestCommentInternalStaffOnly(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, svcCustomer, f.ticket.ID, "note to self", true)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = f.svc.Add(ctx, svcAgent, f.ticket.ID, "checked the AP logs", true)
	require.NoError(t, err)
}

func TestCommentVisibility(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, svcCustomer, f.ticket.ID, "public question", false)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, svcAgent, f.ticket.ID, "internal triage note", true)
	require.NoError(t, err)

	customerView, err := f.svc.ListByTicket(ctx, svcCustomer, f.ticket.ID)
	require.NoError(t, err)
	require.Len(t, customerView, 1)
	assert.False(t, customerView[0].IsInternal)

	staffView, err := f.svc.ListByTicket(ctx, svcAgent, f.ticket.ID)
	require.NoError(t, err)
	assert.Len(t, staffView, 2)
}

func TestCommentTicketAccess(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	stranger := &domain.User{ID: "customer-2", Role: domain.RoleCustomer, Active: true}
	_, err := f.svc.Add(ctx, stranger, f.ticket.ID, "me too", false)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = f.svc.ListByTicket(ctx, stranger, f.ticket.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestCommentUpdateAndDelete(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	comment, err := f.svc.Add(ctx, svcCustomer, f.ticket.ID, "original", false)
	require.NoError(t, err)

	t.Run("author may edit", func(t *testing.T) {
		updated, err := f.svc.Update(ctx, svcCustomer, comment.ID, "corrected")
		require.NoError(t, err)
		assert.Equal(t, "corrected", updated.Content)
	})

	t.Run("non-author non-admin forbidden", func(t *testing.T) {
		_, err := f.svc.Update(ctx, svcAgent, comment.ID, "hijacked")
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

		err = f.svc.Delete(ctx, svcAgent, comment.ID)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("admin may delete", func(t *testing.T) {
		require.NoError(t, f.svc.Delete(ctx, svcAdmin, comment.ID))
		err := f.svc.Delete(ctx, svcAdmin, comment.ID)
		assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	})
}
