package domain

import "time"

// Comment is a ticket-scoped note. Internal comments are visible to staff
// only. Comments have no coupling to the ticket workflow; they are an
// append-only thread editable by their author or an admin.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
