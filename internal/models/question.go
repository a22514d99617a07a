package models

import (
	"time"

	"github.com/google/uuid"
)

// Field length limits for host questions and participant responses.
const (
	MaxQuestionLength = 300
	MaxResponseLength = 500
)

// Question belongs to exactly one meeting. Index is 1-based and unique within
// the meeting; the validation pipeline guarantees the sequence has no gaps.
type Question struct {
	ID        uint      `gorm:"primaryKey"`
	MeetingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_questions_meeting_index"`
	Text      string    `gorm:"size:300;not null"`
	Index     int       `gorm:"not null;uniqueIndex:idx_questions_meeting_index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Responses []Response
}

// Response is a participant's free-text answer to a question.
type Response struct {
	ID         uint   `gorm:"primaryKey"`
	QuestionID uint   `gorm:"not null;index"`
	Text       string `gorm:"size:500;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
