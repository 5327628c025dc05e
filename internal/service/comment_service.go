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
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// CommentService manages the ticket comment thread.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(comments repository.CommentRepository, tickets repository.TicketRepository, dispatcher events.Dispatcher) *CommentService {
	return &CommentService{comments: comments, tickets: tickets, dispatcher: dispatcher}
}

// Add appends a comment to a ticket. Internal comments are staff only.
func (s *CommentService) Add(ctx context.Context, actor *domain.User, ticketID, content string, isInternal bool) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	if isInternal && !actor.Role.Staff() {
		return nil, apperrors.NewForbidden("internal comments are staff only")
	}
	ticket, err := s.accessTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    content,
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventCommentAdded,
			TicketID:  ticket.ID,
			Actor:     events.Actor{ID: actor.ID, Role: actor.Role},
			Timestamp: time.Now(),
			Payload: events.CommentAddedPayload{
				CommentID:   comment.ID,
				IsInternal:  comment.IsInternal,
				BodyPreview: stringPreview(comment.Content, 120),
			},
		})
	}
	return comment, nil
}

// ListByTicket returns the comment thread, hiding internal comments from
// customers.
func (s *CommentService) ListByTicket(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Comment, error) {
	if _, err := s.accessTicket(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if actor.Role.Staff() {
		return comments, nil
	}
	visible := make([]domain.Comment, 0, len(comments))
	for _, comment := range comments {
		if comment.IsInternal {
			continue
		}
		visible = append(visible, comment)
	}
	return visible, nil
}

// Update edits a comment's content. Author or admin only.
func (s *CommentService) Update(ctx context.Context, actor *domain.User, commentID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actor.ID && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only the author or an admin may edit a comment")
	}
	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// Delete removes a comment. Author or admin only.
func (s *CommentService) Delete(ctx context.Context, actor *domain.User, commentID string) error {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != actor.ID && actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only the author or an admin may delete a comment")
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *CommentService) loadComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

func (s *CommentService) accessTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !actor.Role.Staff() && ticket.CreatedBy != actor.ID {
		return nil, apperrors.NewForbidden("not your ticket")
	}
	return ticket, nil
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
