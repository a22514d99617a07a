package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/collabhq/collaboard/internal/models"
)

// MeetingStore provides meeting persistence on top of GORM.
type MeetingStore struct {
	db *gorm.DB
}

// NewMeetingStore creates a MeetingStore bound to the given connection.
func NewMeetingStore(db *gorm.DB) *MeetingStore {
	return &MeetingStore{db: db}
}

// GetUser returns the owner record for the authenticated user id.
func (s *MeetingStore) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// CreateMeetingWithQuestions persists a validated meeting, its statistics row
// and its questions in one transaction, and bumps the owner's meeting counter.
// Nothing is written unless every insert succeeds.
func (s *MeetingStore) CreateMeetingWithQuestions(meeting *models.Meeting, questions []models.Question) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(meeting).Error; err != nil {
			return fmt.Errorf("failed to create meeting: %w", err)
		}
		stats := models.MeetingStatistics{MeetingID: meeting.ID}
		if err := tx.Create(&stats).Error; err != nil {
			return fmt.Errorf("failed to create statistics: %w", err)
		}
		for i := range questions {
			questions[i].MeetingID = meeting.ID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return fmt.Errorf("failed to create question %d: %w", questions[i].Index, err)
			}
		}
		if err := tx.Model(&models.User{}).Where("id = ?", meeting.UserID).
			Update("total_meetings", gorm.Expr("total_meetings + 1")).Error; err != nil {
			return fmt.Errorf("failed to update meeting counter: %w", err)
		}
		return nil
	})
}

// GetMeetingForUser returns the meeting with its questions, but only when it
// belongs to the given user. Anything else is a not-found.
func (s *MeetingStore) GetMeetingForUser(id uuid.UUID, userID uint) (*models.Meeting, error) {
	var meeting models.Meeting
	err := s.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order(`"index"`)
	}).Where("id = ? AND user_id = ?", id, userID).First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}
	return &meeting, nil
}

// ListMeetings returns all meetings owned by the user, newest first.
func (s *MeetingStore) ListMeetings(userID uint) ([]models.Meeting, error) {
	var meetings []models.Meeting
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&meetings).Error; err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

// StampStartTime records when the host first opened the meeting. Idempotent:
// only the first visit sets the timestamp.
func (s *MeetingStore) StampStartTime(meetingID uuid.UUID) error {
	err := s.db.Model(&models.MeetingStatistics{}).
		Where("meeting_id = ? AND start_time IS NULL", meetingID).
		Update("start_time", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to stamp start time: %w", err)
	}
	return nil
}

// StampEndTime records when the host ended the meeting. Idempotent.
func (s *MeetingStore) StampEndTime(meetingID uuid.UUID) error {
	err := s.db.Model(&models.MeetingStatistics{}).
		Where("meeting_id = ? AND end_time IS NULL", meetingID).
		Update("end_time", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to stamp end time: %w", err)
	}
	return nil
}
