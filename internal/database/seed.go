package database

import (
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/collabhq/collaboard/internal/crypto"
	"github.com/collabhq/collaboard/internal/models"
)

// SeedDevData populates the database with development test data.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB) error {
	var existingUser models.User
	result := db.Where("email = ?", "dev@collaboard.local").First(&existingUser)
	if result.Error == nil {
		slog.Info("Seed data already exists, skipping")
		return nil
	}

	hash, err := crypto.HashPassword("devpassword")
	if err != nil {
		return err
	}

	user := models.User{
		Email:        "dev@collaboard.local",
		PasswordHash: hash,
		FirstName:    "Dev",
		LastName:     "User",
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	meeting := models.Meeting{
		ID:          uuid.New(),
		AccessCode:  "01234567",
		UserID:      user.ID,
		Title:       "Sprint retrospective",
		Description: "What went well, what didn't, what we change next sprint",
		Duration:    30,
	}
	if err := db.Create(&meeting).Error; err != nil {
		return err
	}
	if err := db.Create(&models.MeetingStatistics{MeetingID: meeting.ID}).Error; err != nil {
		return err
	}

	questions := []models.Question{
		{MeetingID: meeting.ID, Text: "What went well this sprint?", Index: 1},
		{MeetingID: meeting.ID, Text: "What slowed you down?", Index: 2},
	}
	for i := range questions {
		if err := db.Create(&questions[i]).Error; err != nil {
			return err
		}
	}
	if err := db.Model(&user).Update("total_meetings", 1).Error; err != nil {
		return err
	}

	slog.Info("Seeded dev data", "user", user.Email, "meetings", 1, "questions", len(questions))
	return nil
}
