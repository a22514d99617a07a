// Package meetings holds meeting construction and the handlers around it.
//
// Construction and persistence are separate steps: CreateMeeting and
// CreateQuestions only validate and build in-memory objects, so the caller
// can validate the whole batch before committing any of it.
package meetings

import (
	"math/rand"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/collabhq/collaboard/internal/models"
)

// GenerateAccessCode returns a random numeric code of the given length. Each
// digit is drawn independently and uniformly from 0-9; leading zeros are
// allowed. Codes are not checked for collisions against existing meetings.
func GenerateAccessCode(digits int) string {
	var b strings.Builder
	b.Grow(digits)
	for i := 0; i < digits; i++ {
		b.WriteByte('0' + byte(rand.Intn(10)))
	}
	return b.String()
}

// CreateMeeting validates the untrusted input and constructs a meeting for
// the owner. Returns nil when any field is absent, the duration does not
// parse, or a bound is violated. The result carries a fresh id and access
// code but is NOT persisted.
func CreateMeeting(owner *models.User, title, description, durationRaw string) *models.Meeting {
	if owner == nil || title == "" || description == "" || durationRaw == "" {
		return nil
	}
	// Bounds are in characters, not bytes.
	if utf8.RuneCountInString(title) > 200 || utf8.RuneCountInString(description) > 1000 {
		return nil
	}
	duration, err := strconv.Atoi(durationRaw)
	if err != nil {
		return nil
	}
	if duration < models.MinDurationMinutes || duration > models.MaxDurationMinutes {
		return nil
	}

	return &models.Meeting{
		ID:          uuid.New(),
		AccessCode:  GenerateAccessCode(models.AccessCodeDigits),
		UserID:      owner.ID,
		Title:       title,
		Description: description,
		Duration:    duration,
	}
}

// CreateQuestions validates every question text and builds the question list
// for the meeting. All-or-nothing: a nil meeting, an empty list or any empty
// or over-long element fails the whole batch, so a meeting can never end up
// with a gap in its index sequence. Indexes are 1-based and follow input
// order exactly. Nothing is persisted here.
func CreateQuestions(meeting *models.Meeting, texts []string) []models.Question {
	if meeting == nil || len(texts) == 0 {
		return nil
	}

	questions := make([]models.Question, 0, len(texts))
	for i, text := range texts {
		if text == "" || utf8.RuneCountInString(text) > models.MaxQuestionLength {
			return nil
		}
		questions = append(questions, models.Question{
			MeetingID: meeting.ID,
			Text:      text,
			Index:     i + 1,
		})
	}
	return questions
}
