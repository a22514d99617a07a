package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrMeetingNotFound is returned when no meeting matches the lookup, or the
// meeting is not owned by the requesting user.
var ErrMeetingNotFound = errors.New("meeting not found")

// Meeting duration bounds in minutes.
const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 60
)

// DefaultDescription is applied at the storage layer when none is provided.
const DefaultDescription = "No description provided"

// AccessCodeDigits is the length of the numeric code participants use to join.
const AccessCodeDigits = 8

// Meeting represents a scheduled meeting owned by a user.
// Meetings are constructed in memory, validated, then persisted atomically
// together with their questions.
type Meeting struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccessCode  string    `gorm:"type:char(8);not null"` // participant join code, leading zeros allowed
	UserID      uint      `gorm:"not null;index"`
	User        User
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"size:1000;not null;default:'No description provided'"`
	Duration    int    `gorm:"not null;default:60"` // minutes, in [1,60]
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Questions  []Question
	Statistics []MeetingStatistics
}

// MeetingStatistics records when a meeting actually started and ended.
// Both timestamps are nil until the host opens and closes the meeting.
type MeetingStatistics struct {
	ID        uint      `gorm:"primaryKey"`
	MeetingID uuid.UUID `gorm:"type:uuid;not null;index"`
	StartTime *time.Time
	EndTime   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
