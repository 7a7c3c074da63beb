package entities

import (
	"time"

	"github.com/google/uuid"
)

// UserRole defines user roles. Role is fixed at sign-up and gates which
// dashboard and actions are available.
type UserRole string

const (
	RoleSpeaker  UserRole = "speaker"
	RoleListener UserRole = "listener"
)

// IsValid checks if the user role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case RoleSpeaker, RoleListener:
		return true
	}
	return false
}

// User represents an authenticated account
type User struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        UserRole  `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewUser creates a new user with a generated id
func NewUser(email, displayName string, role UserRole) *User {
	return &User{
		UID:         uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
		Role:        role,
		CreatedAt:   time.Now().UTC(),
	}
}

// IsSpeaker checks if the user can create and broadcast sessions
func (u *User) IsSpeaker() bool {
	return u.Role == RoleSpeaker
}

// Validate validates user data
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrInvalidEmail
	}
	if u.DisplayName == "" {
		return ErrInvalidName
	}
	if !u.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}
