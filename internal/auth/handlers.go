package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/collabhq/collaboard/internal/models"
)

// SignupPage renders the empty signup form
func SignupPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "signup.html", gin.H{})
	}
}

// HandleSignup validates the posted form and, when everything checks out,
// issues a verification token and emails the link. The outcome is always a
// re-render: either the form with errors or the "email sent" page.
func HandleSignup(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form SignupForm
		if err := c.ShouldBind(&form); err != nil {
			c.HTML(http.StatusOK, "signup.html", gin.H{
				"Form":   form,
				"Errors": fieldErrors(err),
			})
			return
		}

		err := svc.BeginSignup(form, requestBaseURL(c))
		switch {
		case errors.Is(err, ErrPasswordMismatch):
			c.HTML(http.StatusOK, "signup.html", gin.H{
				"Form":   form,
				"Errors": map[string]string{"password2": "Passwords don't match"},
			})
		case errors.Is(err, models.ErrEmailTaken):
			c.HTML(http.StatusOK, "signup.html", gin.H{
				"Form":        form,
				"EmailExists": true,
			})
		case errors.Is(err, ErrMailDelivery):
			c.HTML(http.StatusOK, "signup.html", gin.H{
				"Form":           form,
				"EmailSentError": true,
			})
		case err != nil:
			c.HTML(http.StatusInternalServerError, "signup.html", gin.H{
				"Form":           form,
				"EmailSentError": true,
			})
		default:
			c.HTML(http.StatusOK, "verify_email_sent.html", gin.H{
				"Email": NormalizeEmail(form.Email),
			})
		}
	}
}

// VerifyEmail redeems the token from the verification link. Invalid, expired
// and missing tokens all render the same "not verified" outcome.
func VerifyEmail(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.CompleteSignup(c.Query("token"))
		switch {
		case errors.Is(err, models.ErrEmailTaken):
			// Someone beat this token to the account (double submit or a
			// signup race). The address is registered either way.
			c.HTML(http.StatusOK, "verify_result.html", gin.H{
				"Verified":    false,
				"EmailExists": true,
			})
		case err != nil:
			c.HTML(http.StatusOK, "verify_result.html", gin.H{
				"Verified": false,
			})
		default:
			c.HTML(http.StatusOK, "verify_result.html", gin.H{
				"Verified": true,
				"Email":    user.Email,
			})
		}
	}
}

// LoginPage renders the login form
func LoginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "login.html", gin.H{})
	}
}

// HandleLogin authenticates the user and starts a session. The failure
// message never says whether the email or the password was wrong.
func HandleLogin(svc *Service, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form LoginForm
		if err := c.ShouldBind(&form); err != nil {
			c.HTML(http.StatusOK, "login.html", gin.H{"InvalidEmailPassword": true})
			return
		}

		user, err := svc.Authenticate(form.Email, form.Password)
		if err != nil {
			c.HTML(http.StatusOK, "login.html", gin.H{"InvalidEmailPassword": true})
			return
		}

		// Remember-me decides the session lifetime once, at login:
		// two weeks, or expire when the browser closes.
		maxAge := 0
		if form.RememberMe {
			maxAge = int(RememberMeDuration.Seconds())
		}

		session := sessions.Default(c)
		session.Options(sessions.Options{
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			Secure:   secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		session.Set(sessionKeyUserID, user.ID)
		session.Set(sessionKeyUserEmail, user.Email)
		session.Set(sessionKeyUserName, user.FullName())
		if err := session.Save(); err != nil {
			c.HTML(http.StatusInternalServerError, "login.html", gin.H{"InvalidEmailPassword": false})
			return
		}

		c.Redirect(http.StatusFound, "/dashboard")
	}
}

// HandleLogout clears the session and redirects to login
func HandleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		session.Clear()
		session.Options(sessions.Options{Path: "/", MaxAge: -1})
		_ = session.Save()
		c.Redirect(http.StatusFound, "/login")
	}
}

// requestBaseURL reconstructs "{protocol}://{domain}" for links embedded in
// outgoing email. Honors X-Forwarded-Proto when running behind a proxy.
func requestBaseURL(c *gin.Context) string {
	proto := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		proto = "https"
	}
	return proto + "://" + c.Request.Host
}

// fieldErrors flattens binding failures into per-field messages for the form
// template.
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["form"] = "Please check the submitted fields"
		return out
	}

	for _, fe := range verrs {
		field := formFieldName(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = "This field is required"
		case "email":
			out[field] = "Enter a valid email address"
		case "max":
			out[field] = "This value is too long"
		default:
			out[field] = "This value is invalid"
		}
	}
	return out
}

// formFieldName maps struct field names back to their form input names.
func formFieldName(structField string) string {
	switch structField {
	case "Email":
		return "email"
	case "FirstName":
		return "first_name"
	case "LastName":
		return "last_name"
	case "Password1":
		return "password1"
	case "Password2":
		return "password2"
	default:
		return structField
	}
}
