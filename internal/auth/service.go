// Package auth implements email-verified signup, login and account removal.
//
// Signup never writes to storage directly: the validated form is folded into
// a signed, time-limited token and emailed to the address being claimed. Only
// redeeming that token (GET /verify) creates the user row.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/collabhq/collaboard/internal/crypto"
	"github.com/collabhq/collaboard/internal/models"
)

// VerificationPurpose namespaces account-verification tokens; tokens signed
// for any other purpose never verify here.
const VerificationPurpose = "account-verification"

// VerificationMaxAge is how long a verification link stays valid.
const VerificationMaxAge = 24 * time.Hour

// RememberMeDuration is the session lifetime when "remember me" is checked.
// Without it the session cookie expires when the browser closes.
const RememberMeDuration = 14 * 24 * time.Hour

// Workflow outcomes surfaced to handlers.
var (
	ErrPasswordMismatch   = errors.New("passwords don't match")
	ErrMailDelivery       = errors.New("failed to send verification email")
	ErrNotVerified        = errors.New("account not verified")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// dummyHash is compared against when the email is unknown, so the missing-user
// path does roughly the same work as a wrong-password path.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// PendingSignup is the transient payload embedded in a verification token.
// It is never persisted and exists only for the token's validity window.
// PasswordHash is a bcrypt hash; the plaintext never enters the token.
type PendingSignup struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

// SignupForm carries the signup POST fields. Binding tags drive validation.
type SignupForm struct {
	Email     string `form:"email" binding:"required,email,max=254"`
	FirstName string `form:"first_name" binding:"required,max=150"`
	LastName  string `form:"last_name" binding:"required,max=150"`
	Password1 string `form:"password1" binding:"required,max=128"`
	Password2 string `form:"password2" binding:"required,max=128"`
}

// LoginForm carries the login POST fields.
type LoginForm struct {
	Email      string `form:"email" binding:"required"`
	Password   string `form:"password" binding:"required"`
	RememberMe bool   `form:"remember_me"`
}

// UserStore is the persistence surface the workflow needs.
type UserStore interface {
	EmailExists(email string) (bool, error)
	CreateUser(u *models.User) error
	FindByEmail(email string) (*models.User, error)
	DeleteUser(id uint) error
}

// MailSender delivers the verification email.
type MailSender interface {
	SendVerificationEmail(to, link string, validFor time.Duration) error
}

// TokenCodec signs and verifies the pending-signup payload.
type TokenCodec interface {
	Sign(payload any) (string, error)
	Unsign(token string, maxAge time.Duration, out any) error
}

// Service orchestrates the signup, verification and login workflows.
type Service struct {
	store  UserStore
	mailer MailSender
	codec  TokenCodec
	log    *slog.Logger
}

// NewService wires the workflow dependencies.
func NewService(store UserStore, mailer MailSender, codec TokenCodec, log *slog.Logger) *Service {
	return &Service{store: store, mailer: mailer, codec: codec, log: log}
}

// BeginSignup validates the form, issues a verification token and emails the
// link. No user row is written here. baseURL is "{protocol}://{domain}" taken
// from the inbound request.
//
// Returns ErrPasswordMismatch, models.ErrEmailTaken or ErrMailDelivery for
// user-facing outcomes.
func (s *Service) BeginSignup(form SignupForm, baseURL string) error {
	if form.Password1 != form.Password2 {
		return ErrPasswordMismatch
	}

	email := NormalizeEmail(form.Email)

	// Pre-flight probe. The unique index on users.email remains the real
	// guarantee; a race here is caught at redemption time.
	exists, err := s.store.EmailExists(email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return models.ErrEmailTaken
	}

	hash, err := crypto.HashPassword(form.Password1)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	token, err := s.codec.Sign(PendingSignup{
		Email:        email,
		PasswordHash: hash,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
	})
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	link := baseURL + "/verify?token=" + url.QueryEscape(token)
	if err := s.mailer.SendVerificationEmail(email, link, VerificationMaxAge); err != nil {
		s.log.Error("Verification email delivery failed", "email", email, "error", err.Error())
		return ErrMailDelivery
	}

	s.log.Info("Verification email sent", "email", email)
	return nil
}

// CompleteSignup redeems a verification token for a persisted user account.
// Tampered, expired and missing tokens all collapse into ErrNotVerified; a
// concurrent redemption that already created the account surfaces as
// models.ErrEmailTaken.
func (s *Service) CompleteSignup(token string) (*models.User, error) {
	var pending PendingSignup
	if err := s.codec.Unsign(token, VerificationMaxAge, &pending); err != nil {
		return nil, ErrNotVerified
	}

	user := &models.User{
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		FirstName:    pending.FirstName,
		LastName:     pending.LastName,
	}
	if err := s.store.CreateUser(user); err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			return nil, models.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("User account created", "email", user.Email, "user_id", user.ID)
	return user, nil
}

// Authenticate checks the credentials and returns the user. The failure is
// ErrInvalidCredentials whether the email is unknown or the password is
// wrong.
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	user, err := s.store.FindByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// Burn a comparison anyway to narrow the timing difference
			// between unknown-email and wrong-password.
			_ = crypto.CheckPassword(dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := crypto.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// DeleteAccount removes the user and everything they own.
func (s *Service) DeleteAccount(userID uint) error {
	if err := s.store.DeleteUser(userID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	s.log.Info("User account deleted", "user_id", userID)
	return nil
}

// NormalizeEmail trims whitespace and lowercases the domain part, so lookups
// and the unique index agree on one canonical form.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
