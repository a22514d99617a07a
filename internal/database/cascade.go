package database

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/collabhq/collaboard/internal/models"
)

// Deletion order matters: foreign keys carry no ON DELETE action, so children
// must go before their parents. The sequence is
// responses -> questions -> statistics -> meeting(s) -> user.

// deleteMeetingCascade removes one meeting and all rows hanging off it.
// Must run inside a transaction.
func deleteMeetingCascade(tx *gorm.DB, meetingID uuid.UUID) error {
	if err := tx.Exec(
		`DELETE FROM responses WHERE question_id IN (SELECT id FROM questions WHERE meeting_id = ?)`,
		meetingID,
	).Error; err != nil {
		return fmt.Errorf("failed to delete responses: %w", err)
	}
	if err := tx.Where("meeting_id = ?", meetingID).Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	if err := tx.Where("meeting_id = ?", meetingID).Delete(&models.MeetingStatistics{}).Error; err != nil {
		return fmt.Errorf("failed to delete statistics: %w", err)
	}
	if err := tx.Where("id = ?", meetingID).Delete(&models.Meeting{}).Error; err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	return nil
}

// deleteUserCascade removes every meeting the user owns, then the user row
// itself. Must run inside a transaction.
func deleteUserCascade(tx *gorm.DB, userID uint) error {
	var meetingIDs []uuid.UUID
	if err := tx.Model(&models.Meeting{}).Where("user_id = ?", userID).
		Pluck("id", &meetingIDs).Error; err != nil {
		return fmt.Errorf("failed to list meetings: %w", err)
	}

	for _, id := range meetingIDs {
		if err := deleteMeetingCascade(tx, id); err != nil {
			return err
		}
	}

	if err := tx.Delete(&models.User{}, userID).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
