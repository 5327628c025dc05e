package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ErrRevisionConflict reports a conditional update that lost a concurrent
// write race. Callers should re-read the ticket and retry or surface the
// conflict.
var ErrRevisionConflict = errors.New("ticket revision conflict")

// TicketFilter captures listing parameters.
type TicketFilter struct {
	CreatedBy  *string
	AssigneeID *string
	// Unassigned restricts to tickets with no assignee.
	Unassigned bool
	// VisibleToAgent matches tickets assigned to the agent or unassigned,
	// the working set an agent sees by default.
	VisibleToAgent *string
	Statuses       []domain.TicketStatus
	Priorities     []domain.TicketPriority
	Categories     []domain.TicketCategory
	SearchTerm     *string
	Limit          int
	Offset         int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// UpdateRevisioned writes the ticket conditioned on ticket.Revision
	// being current, incrementing it on success. Returns
	// ErrRevisionConflict when another writer got there first.
	UpdateRevisioned(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, external_key, title, description, category, priority, tags, status,
               assignee_id, acceptance_status, rejection_reason, created_by, due_date,
               created_at, updated_at, resolved_at, revision`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, title, description, category, priority, tags, status,
            assignee_id, acceptance_status, rejection_reason, created_by, due_date, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at, revision`
	assigneeID, acceptance := assignmentColumns(ticket.Assignment)
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Tags,
		ticket.Status,
		assigneeID,
		acceptance,
		nullableString(ticket.RejectionReason),
		ticket.CreatedBy,
		ticket.DueDate,
		ticket.CreatedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt, &ticket.Revision)
}

func (r *ticketRepository) UpdateRevisioned(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category=$3, priority=$4, tags=$5, status=$6,
            assignee_id=$7, acceptance_status=$8, rejection_reason=$9, due_date=$10,
            resolved_at=$11, updated_at=NOW(), revision=revision+1
        WHERE id=$12 AND revision=$13`
	assigneeID, acceptance := assignmentColumns(ticket.Assignment)
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Tags,
		ticket.Status,
		assigneeID,
		acceptance,
		nullableString(ticket.RejectionReason),
		ticket.DueDate,
		ticket.ResolvedAt,
		ticket.ID,
		ticket.Revision,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRevisionConflict
	}
	ticket.Revision++
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE external_key=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, key)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "assignee_id IS NULL")
	}
	if filter.VisibleToAgent != nil {
		args = append(args, *filter.VisibleToAgent)
		clauses = append(clauses, fmt.Sprintf("(assignee_id=$%d OR assignee_id IS NULL)", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, cat := range filter.Categories {
			args = append(args, cat)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket          domain.Ticket
		assigneeID      *string
		acceptance      string
		rejectionReason *string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Tags,
		&ticket.Status,
		&assigneeID,
		&acceptance,
		&rejectionReason,
		&ticket.CreatedBy,
		&ticket.DueDate,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.Revision,
	); err != nil {
		return nil, err
	}
	ticket.Assignment = assignmentFromColumns(assigneeID, domain.AcceptanceStatus(acceptance))
	if rejectionReason != nil {
		ticket.RejectionReason = *rejectionReason
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

// assignmentColumns projects the tagged assignment state onto the flat
// (assignee_id, acceptance_status) columns.
func assignmentColumns(a domain.Assignment) (*string, domain.AcceptanceStatus) {
	if agentID, ok := a.AgentID(); ok {
		return &agentID, a.Acceptance()
	}
	return nil, domain.AcceptanceNone
}

func assignmentFromColumns(assigneeID *string, acceptance domain.AcceptanceStatus) domain.Assignment {
	if assigneeID == nil {
		return domain.Unassigned()
	}
	switch acceptance {
	case domain.AcceptanceAccepted:
		return domain.AcceptedBy(*assigneeID)
	default:
		return domain.PendingAcceptance(*assigneeID)
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
