package auth

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/collabhq/collaboard/internal/crypto"
	"github.com/collabhq/collaboard/internal/models"
)

// fakeStore is an in-memory UserStore.
type fakeStore struct {
	users     map[string]*models.User
	created   []*models.User
	deleted   []uint
	createErr error
	nextID    uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*models.User)}
}

func (f *fakeStore) EmailExists(email string) (bool, error) {
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeStore) CreateUser(u *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[u.Email]; ok {
		return models.ErrEmailTaken
	}
	f.nextID++
	u.ID = f.nextID
	f.users[u.Email] = u
	f.created = append(f.created, u)
	return nil
}

func (f *fakeStore) FindByEmail(email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeStore) DeleteUser(id uint) error {
	f.deleted = append(f.deleted, id)
	for email, u := range f.users {
		if u.ID == id {
			delete(f.users, email)
		}
	}
	return nil
}

// fakeMailer records sent verification emails.
type fakeMailer struct {
	sent    []sentMail
	sendErr error
}

type sentMail struct {
	to   string
	link string
}

func (f *fakeMailer) SendVerificationEmail(to, link string, validFor time.Duration) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{to: to, link: link})
	return nil
}

// failingCodec rejects every token, standing in for an expired or tampered
// one.
type failingCodec struct{}

func (failingCodec) Sign(payload any) (string, error) { return "token", nil }
func (failingCodec) Unsign(token string, maxAge time.Duration, out any) error {
	return crypto.ErrInvalidToken
}

func newTestService(t *testing.T, store *fakeStore, mailer *fakeMailer) *Service {
	t.Helper()
	signer, err := crypto.NewSigner("test-secret", "test-salt", VerificationPurpose)
	require.NoError(t, err)
	return NewService(store, mailer, signer, slog.Default())
}

func validForm() SignupForm {
	return SignupForm{
		Email:     "jane@Example.COM",
		FirstName: "Jane",
		LastName:  "Doe",
		Password1: "sup3r-secret",
		Password2: "sup3r-secret",
	}
}

func TestBeginSignup_PasswordMismatch(t *testing.T) {
	store := newFakeStore()
	mailer := &fakeMailer{}
	svc := newTestService(t, store, mailer)

	form := validForm()
	form.Password2 = "different"

	err := svc.BeginSignup(form, "http://localhost:8080")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Empty(t, mailer.sent, "no email may be sent on mismatch")
	assert.Empty(t, store.created, "no user may be created on mismatch")
}

func TestBeginSignup_EmailAlreadyRegistered(t *testing.T) {
	store := newFakeStore()
	store.users["jane@example.com"] = &models.User{Email: "jane@example.com"}
	mailer := &fakeMailer{}
	svc := newTestService(t, store, mailer)

	err := svc.BeginSignup(validForm(), "http://localhost:8080")
	assert.ErrorIs(t, err, models.ErrEmailTaken)
	assert.Empty(t, mailer.sent, "no email may be sent when the address is taken")
}

func TestBeginSignup_MailDeliveryFailure(t *testing.T) {
	store := newFakeStore()
	mailer := &fakeMailer{sendErr: errors.New("smtp down")}
	svc := newTestService(t, store, mailer)

	err := svc.BeginSignup(validForm(), "http://localhost:8080")
	assert.ErrorIs(t, err, ErrMailDelivery)
	assert.Empty(t, store.created)
}

func TestBeginSignup_SendsNormalizedLinkWithoutPlaintextPassword(t *testing.T) {
	store := newFakeStore()
	mailer := &fakeMailer{}
	svc := newTestService(t, store, mailer)

	require.NoError(t, svc.BeginSignup(validForm(), "https://collaboard.example"))
	require.Len(t, mailer.sent, 1)

	msg := mailer.sent[0]
	assert.Equal(t, "jane@example.com", msg.to, "domain must be lowercased")
	assert.True(t, strings.HasPrefix(msg.link, "https://collaboard.example/verify?token="), msg.link)
	assert.NotContains(t, msg.link, "sup3r-secret", "token must never carry the plaintext password")

	// Nothing persisted until the token is redeemed
	assert.Empty(t, store.created)
}

func TestCompleteSignup_RoundTrip(t *testing.T) {
	store := newFakeStore()
	mailer := &fakeMailer{}
	svc := newTestService(t, store, mailer)

	require.NoError(t, svc.BeginSignup(validForm(), "http://localhost:8080"))
	require.Len(t, mailer.sent, 1)

	token := strings.TrimPrefix(mailer.sent[0].link, "http://localhost:8080/verify?token=")
	user, err := svc.CompleteSignup(token)
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, "Doe", user.LastName)
	assert.NoError(t, crypto.CheckPassword(user.PasswordHash, "sup3r-secret"),
		"stored hash must match the signup password")
	assert.Len(t, store.created, 1)
}

func TestCompleteSignup_InvalidOrExpiredToken(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeMailer{}, failingCodec{}, slog.Default())

	_, err := svc.CompleteSignup("some-aged-token")
	assert.ErrorIs(t, err, ErrNotVerified)
	assert.Empty(t, store.created, "no user may be created from an invalid token")
}

func TestCompleteSignup_TamperedToken(t *testing.T) {
	store := newFakeStore()
	mailer := &fakeMailer{}
	svc := newTestService(t, store, mailer)

	require.NoError(t, svc.BeginSignup(validForm(), "http://localhost:8080"))
	token := strings.TrimPrefix(mailer.sent[0].link, "http://localhost:8080/verify?token=")

	tampered := []byte(token)
	tampered[0] ^= 0x01
	_, err := svc.CompleteSignup(string(tampered))
	assert.ErrorIs(t, err, ErrNotVerified)
	assert.Empty(t, store.created)
}

func TestCompleteSignup_DoubleRedemption(t *testing.T) {
	store := newFakeStore()
	mailer := &fakeMailer{}
	svc := newTestService(t, store, mailer)

	require.NoError(t, svc.BeginSignup(validForm(), "http://localhost:8080"))
	token := strings.TrimPrefix(mailer.sent[0].link, "http://localhost:8080/verify?token=")

	_, err := svc.CompleteSignup(token)
	require.NoError(t, err)

	// The token is still cryptographically valid; the unique constraint on
	// email must reject the second account.
	_, err = svc.CompleteSignup(token)
	assert.ErrorIs(t, err, models.ErrEmailTaken)
	assert.Len(t, store.created, 1)
}

func TestAuthenticate(t *testing.T) {
	hash, err := crypto.HashPassword("right-password")
	require.NoError(t, err)

	store := newFakeStore()
	store.users["jane@example.com"] = &models.User{
		Model:        gorm.Model{ID: 7},
		Email:        "jane@example.com",
		PasswordHash: hash,
		FirstName:    "Jane",
		LastName:     "Doe",
	}
	svc := newTestService(t, store, &fakeMailer{})

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate("jane@EXAMPLE.com", "right-password")
		require.NoError(t, err)
		assert.Equal(t, uint(7), user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate("jane@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate("nobody@example.com", "right-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown email must fail identically to a wrong password")
	})
}

func TestDeleteAccount(t *testing.T) {
	store := newFakeStore()
	store.users["jane@example.com"] = &models.User{Model: gorm.Model{ID: 3}, Email: "jane@example.com"}
	svc := newTestService(t, store, &fakeMailer{})

	require.NoError(t, svc.DeleteAccount(3))
	assert.Equal(t, []uint{3}, store.deleted)
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"jane@Example.COM", "jane@example.com"},
		{"  jane@example.com  ", "jane@example.com"},
		{"Jane.Doe@EXAMPLE.com", "Jane.Doe@example.com"}, // local part is case-sensitive
		{"no-at-sign", "no-at-sign"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in), "input %q", tt.in)
	}
}
