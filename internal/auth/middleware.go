package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys. Values are set at login and read by RequireAuth.
const (
	sessionKeyUserID    = "user_id"
	sessionKeyUserEmail = "user_email"
	sessionKeyUserName  = "user_name"
)

// RequireAuth is a middleware that ensures the user is authenticated
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(sessionKeyUserID)

		if userID == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		// Set context values for downstream handlers
		c.Set(sessionKeyUserID, userID)
		c.Set(sessionKeyUserEmail, session.Get(sessionKeyUserEmail))
		c.Set(sessionKeyUserName, session.Get(sessionKeyUserName))

		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id from the request context.
// Only meaningful on routes behind RequireAuth.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(sessionKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// CurrentUserName returns the authenticated user's display name, if set.
func CurrentUserName(c *gin.Context) string {
	v, exists := c.Get(sessionKeyUserName)
	if !exists {
		return ""
	}
	name, _ := v.(string)
	return name
}
