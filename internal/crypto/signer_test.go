package crypto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner("test-secret", "test-salt", "account-verification")
	require.NoError(t, err)
	return s
}

func TestNewSigner_RequiresAllInputs(t *testing.T) {
	tests := []struct {
		name                  string
		secret, salt, purpose string
	}{
		{"missing secret", "", "salt", "purpose"},
		{"missing salt", "secret", "", "purpose"},
		{"missing purpose", "secret", "salt", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSigner(tt.secret, tt.salt, tt.purpose)
			assert.Error(t, err)
		})
	}
}

func TestSigner_RoundTrip(t *testing.T) {
	s := newTestSigner(t)

	in := signupPayload{
		Email:        "jane@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		FirstName:    "Jane",
		LastName:     "Doe",
	}

	token, err := s.Sign(in)
	require.NoError(t, err)

	var out signupPayload
	require.NoError(t, s.Unsign(token, 24*time.Hour, &out))
	assert.Equal(t, in, out)
}

func TestSigner_ExpiryBoundary(t *testing.T) {
	s := newTestSigner(t)

	issued := time.Unix(1700000000, 0)
	s.now = func() time.Time { return issued }

	token, err := s.Sign(signupPayload{Email: "jane@example.com"})
	require.NoError(t, err)

	var out signupPayload

	s.now = func() time.Time { return issued.Add(24*time.Hour - time.Second) }
	assert.NoError(t, s.Unsign(token, 24*time.Hour, &out), "1s before expiry must be valid")

	s.now = func() time.Time { return issued.Add(24 * time.Hour) }
	assert.NoError(t, s.Unsign(token, 24*time.Hour, &out), "exactly at max age must be valid")

	s.now = func() time.Time { return issued.Add(24*time.Hour + time.Second) }
	assert.ErrorIs(t, s.Unsign(token, 24*time.Hour, &out), ErrInvalidToken, "1s past expiry must be invalid")
}

func TestSigner_FutureDatedTokenInvalid(t *testing.T) {
	s := newTestSigner(t)

	issued := time.Unix(1700000000, 0)
	s.now = func() time.Time { return issued }
	token, err := s.Sign(signupPayload{Email: "jane@example.com"})
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(-time.Minute) }
	var out signupPayload
	assert.ErrorIs(t, s.Unsign(token, 24*time.Hour, &out), ErrInvalidToken)
}

func TestSigner_AnyBitFlipInvalidates(t *testing.T) {
	s := newTestSigner(t)

	token, err := s.Sign(signupPayload{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		for bit := 0; bit < 8; bit++ {
			flipped := []byte(token)
			flipped[i] ^= 1 << bit

			var out signupPayload
			err := s.Unsign(string(flipped), 24*time.Hour, &out)
			assert.ErrorIs(t, err, ErrInvalidToken,
				"token with byte %d bit %d flipped must be invalid", i, bit)
		}
	}
}

func TestSigner_MalformedTokens(t *testing.T) {
	s := newTestSigner(t)
	var out signupPayload

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d", "!!.!!.!!"} {
		assert.ErrorIs(t, s.Unsign(token, 24*time.Hour, &out), ErrInvalidToken, "token %q", token)
	}
}

func TestSigner_PurposeBindsSignature(t *testing.T) {
	verify := newTestSigner(t)
	other, err := NewSigner("test-secret", "test-salt", "password-reset")
	require.NoError(t, err)

	token, err := verify.Sign(signupPayload{Email: "jane@example.com"})
	require.NoError(t, err)

	var out signupPayload
	assert.ErrorIs(t, other.Unsign(token, 24*time.Hour, &out), ErrInvalidToken,
		"token must not verify under a different purpose")
}

func TestSigner_SecretAndSaltBindSignature(t *testing.T) {
	s := newTestSigner(t)
	token, err := s.Sign(signupPayload{Email: "jane@example.com"})
	require.NoError(t, err)

	var out signupPayload

	wrongSecret, err := NewSigner("other-secret", "test-salt", "account-verification")
	require.NoError(t, err)
	assert.ErrorIs(t, wrongSecret.Unsign(token, 24*time.Hour, &out), ErrInvalidToken)

	wrongSalt, err := NewSigner("test-secret", "other-salt", "account-verification")
	require.NoError(t, err)
	assert.ErrorIs(t, wrongSalt.Unsign(token, 24*time.Hour, &out), ErrInvalidToken)
}
