package models

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors shared between the storage layer and the services that sit on it.
var (
	// ErrEmailTaken is returned when a create would violate the unique email constraint.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
)

// User represents an account holder with activity counters.
// Accounts are only ever created through verified-token redemption (or an
// administrative path); never directly from unvalidated request input.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex:idx_users_email_not_deleted,where:deleted_at IS NULL;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string `gorm:"size:150;not null"` // non-empty, enforced by CHECK constraint
	LastName     string `gorm:"size:150;not null"` // non-empty, enforced by CHECK constraint

	// Activity counters
	TotalMeetings     uint `gorm:"not null;default:0"`
	TotalParticipants uint `gorm:"not null;default:0"`
	TotalResponses    uint `gorm:"not null;default:0"`

	// Associations (deleted via the explicit cascade in internal/database)
	Meetings []Meeting
}

// FullName returns the display name used on rendered pages.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
