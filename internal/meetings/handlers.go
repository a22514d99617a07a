package meetings

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collabhq/collaboard/internal/auth"
	"github.com/collabhq/collaboard/internal/models"
)

// Store is the persistence surface the meeting handlers need.
type Store interface {
	GetUser(id uint) (*models.User, error)
	CreateMeetingWithQuestions(meeting *models.Meeting, questions []models.Question) error
	GetMeetingForUser(id uuid.UUID, userID uint) (*models.Meeting, error)
	ListMeetings(userID uint) ([]models.Meeting, error)
	StampStartTime(meetingID uuid.UUID) error
	StampEndTime(meetingID uuid.UUID) error
}

// createRequest is the JSON body posted by the create-meeting page.
// Duration arrives as a JSON number but is validated as raw text by
// CreateMeeting, so absence and zero are distinguishable.
type createRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    json.Number `json:"duration"`
	Questions   []string    `json:"questions"`
}

// CreatePage renders the meeting creation form
func CreatePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "meeting_create.html", gin.H{
			"UserName": auth.CurrentUserName(c),
		})
	}
}

// HandleCreate validates the posted meeting and its questions, then persists
// them atomically. Any validation failure is a bare 400: the page's own
// client-side validation reports specifics, the server only refuses. The
// meeting is written only after the questions also validate, so a bad
// question never leaves a half-created meeting behind.
func HandleCreate(store Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CurrentUserID(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		owner, err := store.GetUser(userID)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}

		meeting := CreateMeeting(owner,
			strings.TrimSpace(req.Title),
			strings.TrimSpace(req.Description),
			req.Duration.String(),
		)
		if meeting == nil {
			c.Status(http.StatusBadRequest)
			return
		}

		texts := make([]string, len(req.Questions))
		for i, q := range req.Questions {
			texts[i] = strings.TrimSpace(q)
		}
		questions := CreateQuestions(meeting, texts)
		if questions == nil {
			// Discard the validated meeting without writing it.
			c.Status(http.StatusBadRequest)
			return
		}

		if err := store.CreateMeetingWithQuestions(meeting, questions); err != nil {
			log.Error("Failed to persist meeting", "user_id", userID, "error", err.Error())
			c.Status(http.StatusInternalServerError)
			return
		}

		log.Info("Meeting created", "meeting_id", meeting.ID, "user_id", userID, "questions", len(questions))
		c.JSON(http.StatusOK, gin.H{"redirect": "/meeting/" + meeting.ID.String() + "/host"})
	}
}

// HostPage renders the host view of a meeting and stamps the statistics
// start time on the first visit.
func HostPage(store Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CurrentUserID(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		meetingID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.HTML(http.StatusNotFound, "not_found.html", gin.H{})
			return
		}

		meeting, err := store.GetMeetingForUser(meetingID, userID)
		if err != nil {
			if errors.Is(err, models.ErrMeetingNotFound) {
				c.HTML(http.StatusNotFound, "not_found.html", gin.H{})
				return
			}
			c.Status(http.StatusInternalServerError)
			return
		}

		if err := store.StampStartTime(meeting.ID); err != nil {
			// Statistics are best-effort; the host page still renders.
			log.Error("Failed to stamp meeting start", "meeting_id", meeting.ID, "error", err.Error())
		}

		c.HTML(http.StatusOK, "meeting_host.html", gin.H{
			"Meeting":  meeting,
			"UserName": auth.CurrentUserName(c),
		})
	}
}

// HandleEnd marks the meeting as ended and sends the host to the ended page.
func HandleEnd(store Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CurrentUserID(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		meetingID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.HTML(http.StatusNotFound, "not_found.html", gin.H{})
			return
		}

		meeting, err := store.GetMeetingForUser(meetingID, userID)
		if err != nil {
			if errors.Is(err, models.ErrMeetingNotFound) {
				c.HTML(http.StatusNotFound, "not_found.html", gin.H{})
				return
			}
			c.Status(http.StatusInternalServerError)
			return
		}

		if err := store.StampEndTime(meeting.ID); err != nil {
			log.Error("Failed to stamp meeting end", "meeting_id", meeting.ID, "error", err.Error())
		}

		c.Redirect(http.StatusFound, "/meeting/ended")
	}
}

// LockedPage tells a participant the meeting has not been opened yet.
func LockedPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "meeting_locked.html", gin.H{})
	}
}

// EndedPage tells a participant the meeting is over.
func EndedPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "meeting_ended.html", gin.H{})
	}
}
