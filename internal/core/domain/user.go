package domain

import (
	"strings"
	"time"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a free-form role value.
func ParseRole(s string) (Role, error) {
	switch Role(strings.TrimSpace(s)) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", ErrInvalidRole
}

// User is the local identity record. SubjectID is the stable identifier issued
// by the identity provider.
type User struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"-"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	User    *User
	Session *Session
	Token   string
}
