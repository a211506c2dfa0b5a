package domain

import (
	"strings"
	"time"
)

// Role is the authority granted to a principal.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User models an account that can sign in to the admin site or the API.
// Email is the login identifier and is stored normalised (see NormalizeEmail).
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// NormalizeEmail lower-cases and trims a login identifier so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Principal is the authenticated identity attached to a request, either from
// the admin session or from a bearer token.
type Principal struct {
	User      *User
	Authority Role
}

// NewPrincipal builds the request-scoped context for an authenticated user.
func NewPrincipal(u *User) *Principal {
	return &Principal{User: u, Authority: u.Role}
}

// HasRole reports whether the principal was granted role.
func (p *Principal) HasRole(role Role) bool {
	return p != nil && p.Authority == role
}
