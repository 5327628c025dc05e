package domain

import "time"

// Role enumerates actor roles. Every authenticated caller has exactly one.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleAgent    Role = "AGENT"
	RoleCustomer Role = "CUSTOMER"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

// Staff reports whether the role belongs to helpdesk personnel.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleAgent
}

// User is the domain model for every actor: customers and staff alike.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	Phone        string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
