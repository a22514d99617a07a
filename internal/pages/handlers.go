// Package pages holds the handlers for the site's top-level pages: the
// landing page, the dashboard, and account management.
package pages

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/collabhq/collaboard/internal/auth"
	"github.com/collabhq/collaboard/internal/meetings"
)

// Landing renders the public landing page. Signed-in users are sent
// straight to their dashboard.
func Landing() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user_id") != nil {
			c.Redirect(http.StatusFound, "/dashboard")
			return
		}
		c.HTML(http.StatusOK, "index.html", gin.H{})
	}
}

// Dashboard lists the signed-in user's meetings, newest first.
func Dashboard(store meetings.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CurrentUserID(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		list, err := store.ListMeetings(userID)
		if err != nil {
			log.Error("Failed to list meetings", "user_id", userID, "error", err.Error())
			c.Status(http.StatusInternalServerError)
			return
		}

		c.HTML(http.StatusOK, "dashboard.html", gin.H{
			"UserName": auth.CurrentUserName(c),
			"Meetings": list,
		})
	}
}

// AccountPage renders the account settings page.
func AccountPage(store meetings.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CurrentUserID(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		user, err := store.GetUser(userID)
		if err != nil {
			log.Error("Failed to load user", "user_id", userID, "error", err.Error())
			c.Status(http.StatusInternalServerError)
			return
		}

		c.HTML(http.StatusOK, "account.html", gin.H{
			"User":     user,
			"UserName": user.FullName(),
		})
	}
}

// HandleAccountDelete removes the user's account along with every meeting,
// question and response they own, clears the session, and returns to the
// landing page.
func HandleAccountDelete(svc *auth.Service, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.CurrentUserID(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		if err := svc.DeleteAccount(userID); err != nil {
			log.Error("Failed to delete account", "user_id", userID, "error", err.Error())
			c.Status(http.StatusInternalServerError)
			return
		}

		session := sessions.Default(c)
		session.Clear()
		session.Options(sessions.Options{Path: "/", MaxAge: -1})
		if err := session.Save(); err != nil {
			log.Error("Failed to clear session", "error", err.Error())
		}

		c.Redirect(http.StatusFound, "/")
	}
}
